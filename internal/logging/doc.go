// Package logging provides the Log Registry: a process-wide set of log
// channels keyed by (extension identity, channel name).
//
// Every channel writes to a file named after the owner's namespace and the
// channel name:
//
//	<dir>/<namespace>_<channel>.txt
//
// Each level is written only when enabled on the channel. New channels
// start with Warn and Error enabled; the enable_logs configuration section
// or Channel.Enable turns on the rest.
//
// Files are capped in size. When a file has reached the cap the next write
// truncates it and logging resumes from an empty file. The registry never
// surfaces I/O errors to callers.
//
// # Basic Usage
//
//	reg := logging.NewRegistry(logging.WithDirectory(dir))
//	log := reg.Register(id, "interactions")
//	log.Enable(logging.DebugLevel, logging.InfoLevel)
//	log.Debug("queued", "interaction", 42)
//	log.Exception("failed to queue", err, "sim", simID)
package logging
