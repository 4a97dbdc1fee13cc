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

// Package cli wires the cobra command tree that drives the account
// deduplication pipeline from the command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/crmdedupe/acctdedupe/cnf"
	"github.com/crmdedupe/acctdedupe/log"
)

var opts *cnf.Options

var mainCmd = &cobra.Command{
	Use:   "acctdedupe",
	Short: "CRM account deduplication matching engine",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

func init() {

	mainCmd.AddCommand(
		runCmd,
		versionCmd,
	)

	opts = cnf.Defaults()

	mainCmd.PersistentFlags().StringVarP(&opts.IO.InputPath, "input", "i", "", "Path to the CRM account export to deduplicate")
	mainCmd.PersistentFlags().StringVarP(&opts.IO.OutputDir, "output", "o", "./out", "Directory to write artifacts into")
	mainCmd.PersistentFlags().StringVarP(&opts.IO.ConfigPath, "config", "c", "", "Path to an Hjson configuration file overriding the defaults")
	mainCmd.PersistentFlags().StringVarP(&opts.Logging.Level, "log", "l", opts.Logging.Level, "Specify the logging level: trace, debug, info, warn, error, fatal, panic")
	mainCmd.PersistentFlags().StringVarP(&opts.Logging.Output, "log-output", "", opts.Logging.Output, "Specify the logging output: none, stdout, stderr")
	mainCmd.PersistentFlags().StringVarP(&opts.Logging.Format, "log-format", "", opts.Logging.Format, "Specify the logging format: text, json")

}

// Init runs the cli app, mirroring the teacher's top-level entry point.
func Init() {
	if err := mainCmd.Execute(); err != nil {
		log.Fatalln(err)
	}
}
