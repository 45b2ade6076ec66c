// Package config loads the kernel configuration file.
//
// The file is JSON (simext.config.json) or TOML (any .toml path):
//
//	{
//	  "enable_vanilla_logging": false,
//	  "persist_mod_data_per_save_slot": true,
//	  "create_combined_json": false,
//	  "max_output_file_size_in_bytes": 5242880,
//	  "enable_logs": {"Kernel": ["debug", "info"]}
//	}
//
// Keys missing from the file keep their defaults. Ensure never fails: a
// missing or malformed file is logged, defaults are used and a fresh file
// is written. Watcher reloads the file when it changes on disk.
package config
