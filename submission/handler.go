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

package submission

import (
	"bytes"
	"sync"

	ct "github.com/google/certificate-transparency-go"
	"github.com/google/certingest/cert"
	"github.com/google/certingest/chain"
	te "github.com/google/certingest/errors"
	"github.com/google/certingest/precert"
	"github.com/google/certingest/trust"
	"github.com/google/trillian/monitoring"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"
)

const (
	logLabel       = "log"
	entryTypeLabel = "entry_type"
	codeLabel      = "code"
)

var (
	once        sync.Once
	submissions monitoring.Counter
	latency     monitoring.Histogram
)

func createMetrics(mf monitoring.MetricFactory) {
	if mf == nil {
		mf = monitoring.InertMetricFactory{}
	}
	submissions = mf.NewCounter("submissions", "Number of submissions processed, by outcome", logLabel, entryTypeLabel, codeLabel)
	latency = mf.NewHistogram("submission_latency", "Time spent processing a submission in seconds", logLabel, entryTypeLabel)
}

// Handler processes submissions for one log. It is safe for concurrent use.
type Handler struct {
	// prefix is a pre-formatted string identifying the log for diagnostics.
	prefix     string
	roots      trust.Source
	validator  *chain.Validator
	timeSource clock.PassiveClock
}

// NewHandler creates a Handler that validates against the anchors provided
// by roots. Metrics are registered with mf the first time a Handler is
// created; a nil mf disables them.
func NewHandler(prefix string, roots trust.Source, validator *chain.Validator, mf monitoring.MetricFactory, timeSource clock.PassiveClock) *Handler {
	once.Do(func() { createMetrics(mf) })
	if timeSource == nil {
		timeSource = clock.RealClock{}
	}
	return &Handler{
		prefix:     prefix,
		roots:      roots,
		validator:  validator,
		timeSource: timeSource,
	}
}

// ProcessSubmission decodes raw as a PEM chain, leaf first, and builds the
// log entry of type entryType for it. A rejection is reported as an error
// whose code can be read with errors.CodeOf.
func (h *Handler) ProcessSubmission(raw []byte, entryType ct.LogEntryType) (*LogEntry, error) {
	start := h.timeSource.Now()
	entry, err := h.process(raw, entryType)
	code := te.CodeOf(err)
	submissions.Inc(h.prefix, entryType.String(), code.String())
	latency.Observe(h.timeSource.Since(start).Seconds(), h.prefix, entryType.String())
	if err != nil {
		klog.V(1).Infof("%s: rejected %v submission: %s: %v", h.prefix, entryType, code, err)
		return nil, err
	}
	klog.V(2).Infof("%s: accepted %v submission", h.prefix, entryType)
	return entry, nil
}

func (h *Handler) process(raw []byte, entryType ct.LogEntryType) (*LogEntry, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, te.New(te.EmptySubmission, "empty submission")
	}
	if entryType != ct.X509LogEntryType && entryType != ct.PrecertLogEntryType {
		return nil, te.Errorf(te.UnknownEntryType, "unsupported entry type %v", entryType)
	}

	certs, err := cert.DecodePEMChain(raw)
	if err != nil {
		return nil, err
	}
	// All decisions for this submission are made against one snapshot, even
	// if the anchors are reloaded meanwhile.
	roots := h.roots.Current()
	ch, err := h.validator.Validate(roots, certs)
	if err != nil {
		return nil, err
	}
	klog.V(2).Infof("%s: chain of %d certificate(s) anchored at %s", h.prefix, len(certs), ch.Anchor)

	if entryType == ct.X509LogEntryType {
		return x509Entry(ch)
	}
	return precertEntry(ch)
}

func x509Entry(ch *chain.Chain) (*LogEntry, error) {
	isPrecert, err := precert.IsPrecertificate(ch.Leaf())
	if err != nil {
		return nil, err
	}
	if isPrecert {
		return nil, te.Errorf(te.PrecertSubmittedAsX509, "%s is a precertificate", ch.Leaf())
	}
	if err := chain.CheckCAIssuers(ch, 1); err != nil {
		return nil, err
	}

	intermediates := ch.Intermediates()
	entry := &X509Entry{
		LeafCertificate:  ch.Leaf().Raw(),
		CertificateChain: make([][]byte, 0, len(intermediates)),
	}
	for _, c := range intermediates {
		entry.CertificateChain = append(entry.CertificateChain, c.Raw())
	}
	return &LogEntry{Type: ct.X509LogEntryType, X509: entry, Anchor: ch.Anchor.Raw()}, nil
}

func precertEntry(ch *chain.Chain) (*LogEntry, error) {
	isPrecert, err := precert.IsPrecertificate(ch.Leaf())
	if err != nil {
		return nil, err
	}
	if !isPrecert {
		return nil, te.Errorf(te.NotAPrecertificate, "%s has no poison extension", ch.Leaf())
	}
	iss, err := precert.ValidateIssuer(ch)
	if err != nil {
		return nil, err
	}
	tbs, err := precert.ReconstructTBS(ch.Leaf(), iss)
	if err != nil {
		return nil, err
	}

	entry := &PrecertEntry{
		TBSCertificate:      tbs,
		IssuerKeyHash:       iss.KeyHash(),
		PreCertificate:      ch.Leaf().Raw(),
		PrecertificateChain: precert.BuildChain(ch),
	}
	return &LogEntry{Type: ct.PrecertLogEntryType, Precert: entry, Anchor: ch.Anchor.Raw()}, nil
}
