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

// Package chain checks that a submitted certificate sequence is a valid path
// to a trust anchor.
//
// RFC 6962 s3.1 requires the submitted chain to be used in the order it was
// submitted, so unlike crypto/x509 path building nothing is reordered or
// searched for: each certificate must be issued by the one after it, and the
// last one must be, or be issued by, a trust anchor.
package chain

import (
	"errors"

	"github.com/google/certingest/cert"
	te "github.com/google/certingest/errors"
	"github.com/google/certingest/trust"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"
)

// DefaultMaxLength is the longest chain accepted when Options.MaxLength is
// not set.
const DefaultMaxLength = 10

// Options control chain validation.
type Options struct {
	// CheckValidity rejects chains holding a certificate that is not valid at
	// the current time. CT logs usually accept expired certificates, so this
	// is off by default.
	CheckValidity bool
	// Clock provides the current time for validity checks. Defaults to the
	// system clock.
	Clock clock.PassiveClock
	// MaxLength is the maximum number of submitted certificates.
	MaxLength int
}

// Validator validates submitted chains. It holds no per-submission state and
// is safe for concurrent use.
type Validator struct {
	checkValidity bool
	clock         clock.PassiveClock
	maxLength     int
}

// NewValidator creates a Validator.
func NewValidator(opts Options) *Validator {
	v := &Validator{
		checkValidity: opts.CheckValidity,
		clock:         opts.Clock,
		maxLength:     opts.MaxLength,
	}
	if v.clock == nil {
		v.clock = clock.RealClock{}
	}
	if v.maxLength <= 0 {
		v.maxLength = DefaultMaxLength
	}
	return v
}

// Chain is a validated submission.
type Chain struct {
	// Certs are the submitted certificates, leaf first.
	Certs []*cert.Certificate
	// Anchor is the trust anchor the chain resolved to.
	Anchor *cert.Certificate
	// AnchorListed is true when the last submitted certificate is Anchor.
	AnchorListed bool
}

// Leaf returns the end entity certificate.
func (c *Chain) Leaf() *cert.Certificate {
	return c.Certs[0]
}

// Path returns the full path from the leaf to the anchor. The anchor is
// appended when it was not submitted.
func (c *Chain) Path() []*cert.Certificate {
	path := append([]*cert.Certificate(nil), c.Certs...)
	if !c.AnchorListed {
		path = append(path, c.Anchor)
	}
	return path
}

// NonAnchor returns the submitted certificates, in order, without the anchor.
// A lone certificate that is itself an anchor is kept.
func (c *Chain) NonAnchor() []*cert.Certificate {
	if c.AnchorListed && len(c.Certs) > 1 {
		return c.Certs[:len(c.Certs)-1]
	}
	return c.Certs
}

// Intermediates returns the submitted certificates after the leaf, without
// the anchor.
func (c *Chain) Intermediates() []*cert.Certificate {
	return c.NonAnchor()[1:]
}

// Validate checks that certs, leaf first, is a valid path to an anchor in
// roots.
func (v *Validator) Validate(roots *trust.Store, certs []*cert.Certificate) (*Chain, error) {
	if len(certs) == 0 {
		return nil, te.New(te.EmptySubmission, "no certificates submitted")
	}
	if len(certs) > v.maxLength {
		return nil, te.Errorf(te.InvalidCertificateChain, "chain of %d certificates exceeds maximum of %d", len(certs), v.maxLength)
	}

	for i := 0; i+1 < len(certs); i++ {
		if err := checkLink(certs[i], certs[i+1], i); err != nil {
			return nil, err
		}
	}

	chain, err := anchor(roots, certs)
	if err != nil {
		return nil, err
	}

	if v.checkValidity {
		now := v.clock.Now()
		for i, c := range certs {
			if !c.ValidAt(now) {
				return nil, te.Errorf(te.InvalidCertificateChain, "certificate %d %s is not valid at %v (valid %v to %v)", i, c, now, c.NotBefore(), c.NotAfter())
			}
		}
	}
	return chain, nil
}

// checkLink verifies that issuer, the certificate submitted at position i+1,
// issued the one at position i.
func checkLink(c, issuer *cert.Certificate, i int) error {
	if !c.IssuedBy(issuer) {
		klog.V(2).Infof("Chain link %d: issuer %q does not match subject %q", i, c.IssuerName(), issuer.SubjectName())
		return te.Errorf(te.InvalidCertificateChain, "certificate %d is not issued by certificate %d: issuer %q, next subject %q", i, i+1, c.IssuerName(), issuer.SubjectName())
	}
	if err := c.CheckSignedBy(issuer); err != nil {
		if errors.Is(err, cert.ErrNoPublicKey) {
			return te.Errorf(te.InvalidCertificate, "certificate %d: %v", i+1, err)
		}
		return te.Errorf(te.InvalidCertificateChain, "certificate %d: %v", i, err)
	}
	return nil
}

// anchor resolves trust for the last certificate in certs.
func anchor(roots *trust.Store, certs []*cert.Certificate) (*Chain, error) {
	last := certs[len(certs)-1]
	if a, ok := roots.Lookup(last); ok {
		if !a.Equal(last) {
			klog.V(2).Infof("Submitted anchor %s is a reissue of a trusted one", last)
		}
		return &Chain{Certs: certs, Anchor: a, AnchorListed: true}, nil
	}

	var hint error
	for _, candidate := range roots.FindIssuer(last.RawIssuer()) {
		if err := last.CheckSignedBy(candidate); err != nil {
			klog.V(2).Infof("Rejecting anchor candidate %s: %v", candidate, err)
			hint = err
			continue
		}
		return &Chain{Certs: certs, Anchor: candidate}, nil
	}
	if hint != nil {
		return nil, te.Errorf(te.UnknownRoot, "no trust anchor verifies issuer %q: %v", last.IssuerName(), hint)
	}
	return nil, te.Errorf(te.UnknownRoot, "no trust anchor for issuer %q", last.IssuerName())
}
