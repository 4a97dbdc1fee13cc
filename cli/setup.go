// Copyright © 2016 Abcum Ltd
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"github.com/crmdedupe/acctdedupe/cnf"
	"github.com/crmdedupe/acctdedupe/log"
)

// setup validates the merged configuration and wires the default
// logging hook, the way the teacher's setup runs once per invocation
// before any command body executes.
func setup() error {

	if opts.IO.ConfigPath != "" {
		fromFile, err := cnf.Load(opts.IO.ConfigPath)
		if err != nil {
			return err
		}
		// IO and logging are CLI-flag concerns, never read from the
		// tuning config file; carry the flag-bound values forward
		// rather than letting the file's (always-default) copies win.
		fromFile.IO = opts.IO
		fromFile.Logging = opts.Logging
		opts = fromFile
	}

	// --------------------------------------------------
	// Logging
	// --------------------------------------------------

	logger := &log.DefaultHook{}

	switch opts.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
		logger.SetLevel(opts.Logging.Level)
	default:
		log.Fatal("Incorrect log level specified")
	}

	switch opts.Logging.Format {
	case "text", "json":
		logger.SetFormat(opts.Logging.Format)
	default:
		log.Fatal("Incorrect log format specified")
	}

	switch opts.Logging.Output {
	case "none", "stdout", "stderr":
		logger.SetOutput(opts.Logging.Output)
	default:
		log.Fatal("Incorrect log output specified")
	}

	log.Hook(logger)

	cnf.Settings = opts

	return nil
}
