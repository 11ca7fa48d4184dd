// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/voltgraph/voltgraph-go"
	"github.com/voltgraph/voltgraph-go/internal/config"
	"github.com/voltgraph/voltgraph-go/internal/export"
	"github.com/voltgraph/voltgraph-go/internal/logging"
	"github.com/voltgraph/voltgraph-go/internal/trust"
)

func main() {
	configPath := flag.String("config", "/etc/voltgraph/cli.yaml", "path to client config file")
	addrOverride := flag.String("addr", "", "override server.address from the config file")
	statement := flag.String("statement", "", "statement text to run (required)")
	knownHosts := flag.String("known-hosts", "", "override tls.known_hosts_file from the config file")
	yes := flag.Bool("yes", false, "trust an unknown or changed host fingerprint without prompting")
	trustOnce := flag.Bool("trust-once", false, "trust an unknown or changed fingerprint for this connection only")
	exportBucket := flag.String("export-bucket", "", "if set, upload the result as JSON Lines to this S3 bucket instead of printing it")
	exportKey := flag.String("export-key", "", "S3 object key to use with -export-bucket")
	exportRegion := flag.String("export-region", "us-east-1", "AWS region for -export-bucket")
	flag.Parse()

	if *statement == "" {
		fmt.Fprintln(os.Stderr, "Error: -statement is required")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addrOverride != "" {
		cfg.Server.Address = *addrOverride
	}
	if *knownHosts != "" {
		cfg.TLS.KnownHostsFile = *knownHosts
	}

	logger, logCloser := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File)
	defer logCloser.Close()

	callback := trust.InteractiveCallback(os.Stdin, os.Stderr)
	if *yes {
		callback = func(string, string, string, bool) trust.Action { return trust.ActionTrustAlways }
	} else if *trustOnce {
		callback = func(string, string, string, bool) trust.Action { return trust.ActionTrustOnce }
	}

	driver, err := voltgraph.NewDriver(cfg, callback, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building driver: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	result, err := driver.Run(ctx, *statement, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running statement: %v\n", err)
		os.Exit(1)
	}
	defer result.Close()

	if *exportBucket != "" {
		if err := runExport(ctx, result, *exportBucket, *exportKey, *exportRegion); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting result: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := printResult(ctx, result); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading result: %v\n", err)
		os.Exit(1)
	}
}

func printResult(ctx context.Context, result *voltgraph.Result) error {
	keys, err := result.Keys(ctx)
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	fmt.Println(keys)

	for {
		rec, err := result.Next(ctx)
		if err != nil {
			return fmt.Errorf("reading record: %w", err)
		}
		if rec == nil {
			return nil
		}
		fmt.Println(rec.Values())
	}
}

func runExport(ctx context.Context, result *voltgraph.Result, bucket, key, region string) error {
	records, err := result.Collect(ctx)
	if err != nil {
		return fmt.Errorf("collecting result: %w", err)
	}

	uploader, err := export.NewUploader(ctx, region)
	if err != nil {
		return fmt.Errorf("building uploader: %w", err)
	}

	sources := make([]export.RecordSource, len(records))
	for i, rec := range records {
		sources[i] = rec
	}
	return uploader.UploadRecords(ctx, bucket, key, sources)
}
