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

// Package trust holds the set of trust anchors a log accepts submissions for.
//
// A Store is built once by a Builder and is immutable afterwards, so it can be
// shared by any number of concurrent submissions without locking. Reloading
// is done by building a new Store and swapping it into a Holder.
package trust

import (
	"crypto/sha256"
	"encoding/pem"

	"github.com/google/certingest/cert"
	te "github.com/google/certingest/errors"
	"k8s.io/klog/v2"
)

// Source provides the trust anchors to validate one submission against.
type Source interface {
	// Current returns the snapshot to use. Callers should call it once per
	// submission and keep using the returned Store.
	Current() *Store
}

// Store is an immutable set of trust anchors.
type Store struct {
	anchors       []*cert.Certificate
	bySubject     map[string][]*cert.Certificate
	byFingerprint map[[sha256.Size]byte]*cert.Certificate
}

// Current returns s, so a Store can be used directly as a Source.
func (s *Store) Current() *Store { return s }

// Len returns the number of anchors.
func (s *Store) Len() int { return len(s.anchors) }

// FindIssuer returns the anchors whose subject is rawName. A match is only a
// candidate: trust follows from a signature check.
func (s *Store) FindIssuer(rawName []byte) []*cert.Certificate {
	return s.bySubject[string(rawName)]
}

// Lookup returns the anchor that c is. That is either an anchor with the same
// encoding, or one with the same subject and public key whose key also
// verifies c's signature, as for a reissued self-signed root.
func (s *Store) Lookup(c *cert.Certificate) (*cert.Certificate, bool) {
	if a, ok := s.byFingerprint[c.Fingerprint()]; ok {
		return a, true
	}
	for _, a := range s.bySubject[string(c.RawSubject())] {
		if !a.SameIdentity(c) {
			continue
		}
		if err := c.CheckSignedBy(a); err != nil {
			klog.V(2).Infof("Certificate with the identity of anchor %s is not signed by it: %v", a, err)
			continue
		}
		return a, true
	}
	return nil, false
}

// RawCertificates returns the DER encodings of all anchors in load order.
func (s *Store) RawCertificates() [][]byte {
	raw := make([][]byte, 0, len(s.anchors))
	for _, a := range s.anchors {
		raw = append(raw, a.Raw())
	}
	return raw
}

// Builder accumulates trust anchors. It is not safe for concurrent use.
type Builder struct {
	anchors []*cert.Certificate
}

// NewBuilder creates a Builder containing no anchors.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddCert adds an anchor. Anchors with the same subject and public key as one
// already added are ignored.
func (b *Builder) AddCert(c *cert.Certificate) {
	for _, a := range b.anchors {
		if a.SameIdentity(c) {
			klog.V(1).Infof("Ignoring duplicate trust anchor %s", c.SubjectName())
			return
		}
	}
	b.anchors = append(b.anchors, c)
}

// AddDER decodes and adds a DER-encoded anchor.
func (b *Builder) AddDER(der []byte) error {
	c, err := cert.Parse(der)
	if err != nil {
		return te.Errorf(te.InvalidAnchorCertificate, "failed to parse trust anchor: %w", err)
	}
	b.AddCert(c)
	return nil
}

// AppendCertsFromPEM adds anchors from PEM data. Non certificate blocks are
// skipped. Unlike x509.CertPool, every certificate block must parse and at
// least one must be present; if not, nothing is added.
func (b *Builder) AppendCertsFromPEM(pemCerts []byte) error {
	var parsed []*cert.Certificate
	for len(pemCerts) > 0 {
		var block *pem.Block
		block, pemCerts = pem.Decode(pemCerts)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" || len(block.Headers) != 0 {
			continue
		}
		c, err := cert.Parse(block.Bytes)
		if err != nil {
			klog.Warningf("Error parsing PEM trust anchor: %v", err)
			return te.Errorf(te.InvalidAnchorCertificate, "failed to parse trust anchor %d: %w", len(parsed), err)
		}
		parsed = append(parsed, c)
	}
	if len(parsed) == 0 {
		return te.New(te.InvalidAnchorCertificate, "no trust anchor certificates found")
	}
	for _, c := range parsed {
		b.AddCert(c)
	}
	return nil
}

// Build returns an immutable Store holding the anchors added so far. The
// Builder may keep being used without affecting the Store.
func (b *Builder) Build() *Store {
	s := &Store{
		anchors:       append([]*cert.Certificate(nil), b.anchors...),
		bySubject:     make(map[string][]*cert.Certificate),
		byFingerprint: make(map[[sha256.Size]byte]*cert.Certificate),
	}
	for _, a := range s.anchors {
		subject := string(a.RawSubject())
		s.bySubject[subject] = append(s.bySubject[subject], a)
		s.byFingerprint[a.Fingerprint()] = a
	}
	return s
}
