// Package host defines the seams to the environment the settings engine
// runs inside: the filesystem, the operating system family, the set of
// open workspace folders, and the external interpreter-selection source.
//
// Production code uses the concrete implementations in this package;
// tests substitute fakes. Keeping these behind small interfaces means the
// resolution pipeline never touches os.* directly except through a seam
// it can be tested against.
package host
