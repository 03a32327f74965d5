// Package shells identifies terminal shell dialects and composes
// commands for them.
//
// Detection runs a priority-ordered chain of independent detectors over
// whatever signals the host can supply; the highest-priority guess wins.
// Command composition is table-driven per dialect, since POSIX shells,
// cmd, and PowerShell each quote differently.
package shells
