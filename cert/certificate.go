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

// Package cert wraps decoded X.509 certificates with the read-only accessors
// needed to validate CT submissions.
//
// A Certificate never treats its issuer as established fact: the issuer and
// subject names are assertions until CheckSignedBy has confirmed a signature.
package cert

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/google/certificate-transparency-go/asn1"
	"github.com/google/certificate-transparency-go/x509"
	"k8s.io/klog/v2"
)

var (
	// OIDExtensionCTPoison marks a precertificate (RFC 6962 s3.1).
	OIDExtensionCTPoison = x509.OIDExtensionCTPoison
	// OIDExtensionAuthorityKeyID is the Authority Key Identifier extension.
	OIDExtensionAuthorityKeyID = x509.OIDExtensionAuthorityKeyId
)

// ErrNoPublicKey is returned when a certificate's public key could not be
// decoded and so cannot verify anything.
var ErrNoPublicKey = errors.New("certificate has no usable public key")

// Extension is a single X.509v3 extension as found in a certificate.
type Extension struct {
	ID       asn1.ObjectIdentifier
	Critical bool
	Value    []byte
}

// Certificate is an immutable view of one decoded certificate.
type Certificate struct {
	c           *x509.Certificate
	fingerprint [sha256.Size]byte
}

// Parse decodes a single DER-encoded certificate.
func Parse(der []byte) (*Certificate, error) {
	c, err := x509.ParseCertificate(der)
	if x509.IsFatal(err) {
		return nil, err
	}
	if err != nil {
		klog.V(2).Infof("Non-fatal errors parsing %q: %v", c.Subject, err)
	}
	return &Certificate{c: c, fingerprint: sha256.Sum256(c.Raw)}, nil
}

// Raw returns the complete DER encoding of the certificate.
func (c *Certificate) Raw() []byte { return c.c.Raw }

// RawTBS returns the DER encoding of the TBSCertificate.
func (c *Certificate) RawTBS() []byte { return c.c.RawTBSCertificate }

// RawIssuer returns the DER-encoded issuer Name.
func (c *Certificate) RawIssuer() []byte { return c.c.RawIssuer }

// RawSubject returns the DER-encoded subject Name.
func (c *Certificate) RawSubject() []byte { return c.c.RawSubject }

// IssuerName returns a printable form of the issuer Name.
func (c *Certificate) IssuerName() string { return c.c.Issuer.String() }

// SubjectName returns a printable form of the subject Name.
func (c *Certificate) SubjectName() string { return c.c.Subject.String() }

// PublicKeyInfo returns the DER-encoded SubjectPublicKeyInfo.
func (c *Certificate) PublicKeyInfo() []byte { return c.c.RawSubjectPublicKeyInfo }

// NotBefore returns the start of the validity window.
func (c *Certificate) NotBefore() time.Time { return c.c.NotBefore }

// NotAfter returns the end of the validity window.
func (c *Certificate) NotAfter() time.Time { return c.c.NotAfter }

// IsCA reports whether the certificate carries a valid basic constraints
// extension with the CA flag set.
func (c *Certificate) IsCA() bool { return c.c.BasicConstraintsValid && c.c.IsCA }

// Fingerprint returns the SHA-256 hash of the DER encoding.
func (c *Certificate) Fingerprint() [sha256.Size]byte { return c.fingerprint }

// Equal reports whether c and other have identical DER encodings.
func (c *Certificate) Equal(other *Certificate) bool {
	return other != nil && c.fingerprint == other.fingerprint
}

// SameIdentity reports whether c and other have the same subject and public
// key, which is how duplicate trust anchors are recognized.
func (c *Certificate) SameIdentity(other *Certificate) bool {
	return other != nil &&
		bytes.Equal(c.c.RawSubject, other.c.RawSubject) &&
		bytes.Equal(c.c.RawSubjectPublicKeyInfo, other.c.RawSubjectPublicKeyInfo)
}

// ValidAt reports whether t falls inside the validity window.
func (c *Certificate) ValidAt(t time.Time) bool {
	return !t.Before(c.c.NotBefore) && !t.After(c.c.NotAfter)
}

// Extension returns the extension with the given id, if present.
func (c *Certificate) Extension(id asn1.ObjectIdentifier) (Extension, bool) {
	for _, ext := range c.c.Extensions {
		if ext.Id.Equal(id) {
			return Extension{ID: ext.Id, Critical: ext.Critical, Value: ext.Value}, true
		}
	}
	return Extension{}, false
}

// HasExtKeyUsage reports whether the Extended Key Usage extension lists
// usage.
func (c *Certificate) HasExtKeyUsage(usage x509.ExtKeyUsage) bool {
	for _, u := range c.c.ExtKeyUsage {
		if u == usage {
			return true
		}
	}
	return false
}

// IssuedBy reports whether issuer's subject name matches c's issuer name. It
// says nothing about signatures.
func (c *Certificate) IssuedBy(issuer *Certificate) bool {
	return bytes.Equal(c.c.RawIssuer, issuer.c.RawSubject)
}

// CheckSignedBy verifies that issuer's public key produced c's signature. No
// CA or key usage constraints are applied to issuer.
func (c *Certificate) CheckSignedBy(issuer *Certificate) error {
	if issuer.c.PublicKey == nil {
		return ErrNoPublicKey
	}
	if err := issuer.c.CheckSignature(c.c.SignatureAlgorithm, c.c.RawTBSCertificate, c.c.Signature); err != nil {
		return fmt.Errorf("signature by %q does not verify: %v", issuer.SubjectName(), err)
	}
	return nil
}

func (c *Certificate) String() string {
	return fmt.Sprintf("{subject=%q issuer=%q}", c.SubjectName(), c.IssuerName())
}
