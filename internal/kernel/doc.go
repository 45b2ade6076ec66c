// Package kernel wires the extension runtime together.
//
// New builds every subsystem in dependency order: log registry, config,
// isolation, method table, event bus, services, dispatchers, scheduler,
// persistence, data managers and script extensions. The host then defines
// its methods on Methods() and calls Start, which installs the dispatchers,
// loads script extensions and starts the config watcher.
package kernel
