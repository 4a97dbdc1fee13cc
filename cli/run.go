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
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/crmdedupe/acctdedupe/internal/artifact"
	"github.com/crmdedupe/acctdedupe/internal/engine"
	"github.com/crmdedupe/acctdedupe/internal/ingest"
	"github.com/crmdedupe/acctdedupe/log"
)

var (
	runBlacklistPath string
	runOverridesPath string
)

var runCmd = &cobra.Command{
	Use:     "run",
	Short:   "Deduplicate a CRM account export and write review artifacts",
	Example: "  acctdedupe run --input accounts.csv --output ./out",
	RunE: func(cmd *cobra.Command, args []string) error {

		if opts.IO.InputPath == "" {
			log.Fatal("Specify an input file using --input")
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		go func() {
			<-sig
			log.Warn("interrupt received, cancelling run")
			cancel()
		}()

		records, err := ingest.ReadCSV(opts.IO.InputPath)
		if err != nil {
			return err
		}

		blacklist, err := ingest.ReadBlacklist(runBlacklistPath)
		if err != nil {
			return err
		}

		overrides, err := ingest.ReadOverrides(runOverridesPath)
		if err != nil {
			return err
		}

		log.WithField("records", len(records)).Info("starting deduplication run")

		started := time.Now()

		result, err := engine.Run(ctx, records, opts, blacklist, overrides)
		if err != nil {
			return err
		}

		finished := time.Now()

		result.Metadata = engine.NewRunMetadata(started, finished, len(result.Normalized), len(result.ScoredPairs), len(result.Groups), result.DuplicateIDs, opts)
		engine.LogSummary(log.WithField("prefix", "run"), result.Metadata)

		if err := artifact.WriteAll(opts.IO.OutputDir, result); err != nil {
			return err
		}

		log.WithField("output", opts.IO.OutputDir).Info("artifacts written")

		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runBlacklistPath, "blacklist", "", "Optional CSV of account ids manually flagged for deletion")
	runCmd.Flags().StringVar(&runOverridesPath, "overrides", "", "Optional CSV of account_id,disposition manual overrides")
}
