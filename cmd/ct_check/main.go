// Copyright 2026 Google LLC. All Rights Reserved.
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

// The ct_check binary checks PEM submissions the way a log front end would
// and prints the resulting log entries.
//
// Usage:
//
//	ct_check --log_config=log.yaml --entry_type=precert chain1.pem chain2.pem
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	ct "github.com/google/certificate-transparency-go"
	"github.com/google/certingest/cert"
	"github.com/google/certingest/chain"
	"github.com/google/certingest/cmd"
	"github.com/google/certingest/config"
	te "github.com/google/certingest/errors"
	"github.com/google/certingest/submission"
	"github.com/google/certingest/trust"
	"github.com/google/trillian/monitoring/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"
)

var (
	logConfigFlag      = flag.String("log_config", "", "YAML file holding the log configuration")
	trustedRootsFlag   = flag.String("trusted_roots", "", "Comma separated PEM files of trusted roots, overriding roots_pem_files")
	entryTypeFlag      = flag.String("entry_type", "x509", "Type of the submissions: x509 or precert")
	metricsSummaryFlag = flag.Bool("metrics_summary", false, "If true, log the submission metrics before exiting")
	listRootsFlag      = flag.Bool("list_roots", false, "If true, print the fingerprint and subject of every trusted root")
	flagFile           = flag.String("flagfile", "", "File containing flags, file contents can be overridden by command line flags")
)

// result is the outcome of checking one submission file.
type result struct {
	path     string
	code     te.Code
	err      error
	leafHash []byte
	chainLen int
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	if *flagFile != "" {
		if err := cmd.ParseFlagFile(flag.CommandLine, *flagFile, os.Args[1:]); err != nil {
			klog.Exitf("Failed to load flags from %q: %v", *flagFile, err)
		}
	}
	if flag.NArg() == 0 && !*listRootsFlag {
		klog.Exit("No submission files given")
	}

	cfg, err := loadConfig()
	if err != nil {
		klog.Exitf("Invalid configuration: %v", err)
	}
	entryType, err := parseEntryType(*entryTypeFlag)
	if err != nil {
		klog.Exitf("Invalid --entry_type: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	roots, err := trust.LoadFiles(ctx, cfg.RootsPEMFiles...)
	if err != nil {
		klog.Exitf("Failed to load trusted roots: %v", err)
	}
	klog.Infof("%s: loaded %d trusted root(s)", cfg.Prefix, roots.Len())
	if *listRootsFlag {
		if err := listRoots(os.Stdout, roots); err != nil {
			klog.Exitf("Failed to list trusted roots: %v", err)
		}
		if flag.NArg() == 0 {
			return
		}
	}

	timeSource := clock.RealClock{}
	opts := cfg.ValidatorOptions()
	opts.Clock = timeSource
	mf := prometheus.MetricFactory{Prefix: "certingest_"}
	h := submission.NewHandler(cfg.Prefix, trust.NewHolder(roots), chain.NewValidator(opts), mf, timeSource)

	results, err := checkFiles(ctx, h, entryType, cfg.Workers, timeSource, flag.Args())
	if err != nil {
		klog.Exitf("Failed to check submissions: %v", err)
	}

	rejected := 0
	for _, r := range results {
		if r.err != nil {
			rejected++
			fmt.Printf("%s\t%s\t%v\n", r.path, r.code, r.err)
			continue
		}
		fmt.Printf("%s\t%s\tchain=%d\tleaf_hash=%s\n", r.path, r.code, r.chainLen, hex.EncodeToString(r.leafHash))
	}
	if *metricsSummaryFlag {
		logMetricsSummary()
	}
	if rejected > 0 {
		klog.Flush()
		os.Exit(1)
	}
}

func loadConfig() (*config.LogConfig, error) {
	cfg := &config.LogConfig{}
	if *logConfigFlag != "" {
		var err error
		if cfg, err = config.LogConfigFromFile(*logConfigFlag); err != nil {
			return nil, err
		}
	} else {
		cfg.SetDefaults()
	}
	if *trustedRootsFlag != "" {
		cfg.RootsPEMFiles = strings.Split(*trustedRootsFlag, ",")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ct_check"
	}
	return cfg, cfg.Validate()
}

// listRoots writes one line per trusted root: the hex SHA-256 fingerprint and
// the subject.
func listRoots(w io.Writer, roots *trust.Store) error {
	for _, der := range roots.RawCertificates() {
		c, err := cert.Parse(der)
		if err != nil {
			return err
		}
		fp := c.Fingerprint()
		if _, err := fmt.Fprintf(w, "%s\t%s\n", hex.EncodeToString(fp[:]), c.SubjectName()); err != nil {
			return err
		}
	}
	return nil
}

func parseEntryType(s string) (ct.LogEntryType, error) {
	switch strings.ToLower(s) {
	case "x509":
		return ct.X509LogEntryType, nil
	case "precert":
		return ct.PrecertLogEntryType, nil
	}
	return 0, fmt.Errorf("unknown entry type %q", s)
}

// checkFiles processes the submission files with up to workers running at
// once. Results are returned in argument order.
func checkFiles(ctx context.Context, h *submission.Handler, entryType ct.LogEntryType, workers int, timeSource clock.PassiveClock, paths []string) ([]result, error) {
	results := make([]result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = checkFile(h, entryType, timeSource, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkFile(h *submission.Handler, entryType ct.LogEntryType, timeSource clock.PassiveClock, path string) result {
	r := result{path: path}
	raw, err := os.ReadFile(path)
	if err != nil {
		r.code, r.err = te.Unknown, err
		return r
	}
	entry, err := h.ProcessSubmission(raw, entryType)
	if err != nil {
		r.code, r.err = te.CodeOf(err), err
		return r
	}
	leaf, err := submission.BuildLogLeaf(entry, timeSource.Now())
	if err != nil {
		r.code, r.err = te.Unknown, err
		return r
	}
	r.code, r.leafHash = te.OK, leaf.MerkleLeafHash
	if entry.X509 != nil {
		r.chainLen = len(entry.X509.CertificateChain)
	} else {
		r.chainLen = len(entry.Precert.PrecertificateChain)
	}
	return r
}

// logMetricsSummary logs every certingest metric registered with the
// default Prometheus registry.
func logMetricsSummary() {
	families, err := prom.DefaultGatherer.Gather()
	if err != nil {
		klog.Warningf("Failed to gather metrics: %v", err)
		return
	}
	var lines []string
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "certingest_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, l := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			value := m.GetCounter().GetValue()
			if h := m.GetHistogram(); h != nil {
				value = float64(h.GetSampleCount())
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %v", mf.GetName(), strings.Join(labels, ","), value))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		klog.Info(l)
	}
}
