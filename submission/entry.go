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

// Package submission turns a raw PEM submission into a CT log entry.
//
// A Handler decodes the submission, validates the chain against one snapshot
// of the trust anchors, applies the rules of the requested entry type and
// returns a LogEntry ready to be sequenced. Nothing is stored or signed here.
package submission

import (
	"crypto/sha256"

	ct "github.com/google/certificate-transparency-go"
)

// X509Entry is the loggable form of an ordinary certificate submission.
type X509Entry struct {
	// LeafCertificate is the DER encoding of the submitted certificate.
	LeafCertificate []byte
	// CertificateChain holds the submitted intermediates, in submission
	// order. A submitted trust anchor is not included.
	CertificateChain [][]byte
}

// PrecertEntry is the loggable form of a precertificate submission.
type PrecertEntry struct {
	// TBSCertificate is the TBSCertificate the final certificate will have.
	TBSCertificate []byte
	// IssuerKeyHash is the SHA-256 hash of the issuing CA's public key.
	IssuerKeyHash [sha256.Size]byte
	// PreCertificate is the DER encoding of the submitted precertificate.
	PreCertificate []byte
	// PrecertificateChain holds the submitted certificates that are not the
	// trust anchor, starting with the precertificate.
	PrecertificateChain [][]byte
}

// LogEntry is the result of a successful submission. Exactly one of X509 and
// Precert is set, according to Type.
type LogEntry struct {
	Type    ct.LogEntryType
	X509    *X509Entry
	Precert *PrecertEntry
	// Anchor is the DER encoding of the trust anchor the chain resolved to.
	// It is kept for auditing and is not part of the logged data.
	Anchor []byte
}
