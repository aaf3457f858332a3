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

// Package precert recognizes precertificates and derives the TBSCertificate
// that is logged for them (RFC 6962 s3.2).
package precert

import (
	"bytes"
	"crypto/sha256"

	"github.com/google/certificate-transparency-go/asn1"
	"github.com/google/certingest/cert"
	"github.com/google/certingest/chain"
	te "github.com/google/certingest/errors"
)

// IsPrecertificate reports whether c carries the CT poison extension. The
// extension must be critical and hold an ASN.1 NULL; a poison extension in any
// other form is an InvalidCertificate error.
func IsPrecertificate(c *cert.Certificate) (bool, error) {
	ext, ok := c.Extension(cert.OIDExtensionCTPoison)
	if !ok {
		return false, nil
	}
	if !ext.Critical {
		return false, te.Errorf(te.InvalidCertificate, "%s: poison extension is not critical", c)
	}
	if !bytes.Equal(ext.Value, asn1.NullBytes) {
		return false, te.Errorf(te.InvalidCertificate, "%s: poison extension value is %x, not NULL", c, ext.Value)
	}
	return true, nil
}

// Issuer identifies who issued a precertificate.
type Issuer struct {
	// CA is the certificate authority that will issue the final certificate.
	CA *cert.Certificate
	// Signer is the precertificate signing certificate that signed the
	// precertificate on CA's behalf, or nil if CA signed it directly.
	Signer *cert.Certificate
}

// KeyHash returns the SHA-256 hash of the issuing CA's SubjectPublicKeyInfo.
func (i Issuer) KeyHash() [sha256.Size]byte {
	return sha256.Sum256(i.CA.PublicKeyInfo())
}

// ValidateIssuer finds the issuer of the precertificate leading ch. The
// precertificate's issuer must be a CA, or a precertificate signing
// certificate that is itself issued by a CA; if not, the code is
// PrecertIssuerNotCa. Any further submitted issuers must be CAs.
func ValidateIssuer(ch *chain.Chain) (Issuer, error) {
	path := ch.Path()
	if len(path) < 2 {
		return Issuer{}, te.New(te.PrecertIssuerNotCa, "precertificate has no issuer")
	}

	var iss Issuer
	next := 2
	switch role := cert.ClassifyIssuer(path[1]); role {
	case cert.RoleCA:
		iss.CA = path[1]
	case cert.RolePrecertSigner:
		if len(path) < 3 || cert.ClassifyIssuer(path[2]) != cert.RoleCA {
			return Issuer{}, te.Errorf(te.PrecertIssuerNotCa, "precertificate signing certificate %s is not issued by a CA", path[1])
		}
		iss.Signer, iss.CA = path[1], path[2]
		next = 3
	default:
		return Issuer{}, te.Errorf(te.PrecertIssuerNotCa, "precertificate issuer %s is not a CA (role %v)", path[1], role)
	}

	if err := chain.CheckCAIssuers(ch, next); err != nil {
		return Issuer{}, err
	}
	return iss, nil
}

// ReconstructTBS returns the TBSCertificate of leaf as the final certificate
// will have it: without the poison extension and, when a precertificate
// signing certificate was used, with the issuer name and authority key id of
// the real CA.
func ReconstructTBS(leaf *cert.Certificate, iss Issuer) ([]byte, error) {
	edit := TBSEdit{RemoveExtensions: []asn1.ObjectIdentifier{cert.OIDExtensionCTPoison}}
	if iss.Signer != nil {
		edit.Issuer = iss.Signer.RawIssuer()
		edit.ReplaceAuthorityKeyID = true
		if aki, ok := iss.Signer.Extension(cert.OIDExtensionAuthorityKeyID); ok {
			edit.AuthorityKeyID = aki.Value
		}
	}
	tbs, err := RebuildTBS(leaf.RawTBS(), edit)
	if err != nil {
		return nil, te.Errorf(te.PrecertNoTbsCertificate, "%s: failed to rebuild TBSCertificate: %v", leaf, err)
	}
	return tbs, nil
}

// BuildChain returns the DER encodings of the submitted certificates that are
// not the trust anchor, in submission order with the precertificate first.
func BuildChain(ch *chain.Chain) [][]byte {
	certs := ch.NonAnchor()
	raw := make([][]byte, 0, len(certs))
	for _, c := range certs {
		raw = append(raw, c.Raw())
	}
	return raw
}
