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

package testonly

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	ctx509 "github.com/google/certificate-transparency-go/x509"
)

var (
	// Now is a time inside the validity window of every certificate in a PKI
	// except ExpiredLeaf.
	Now = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	notBefore = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	notAfter  = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	oidCTPoison       = asn1.ObjectIdentifier(ctx509.OIDExtensionCTPoison)
	oidCTPrecertEKU   = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 11129, 2, 4, 4}
	precertSignerSKID = []byte{0x50, 0x72, 0x65, 0x53, 0x69, 0x67, 0x6e, 0x65, 0x72, 0x4b, 0x65, 0x79}

	serial atomic.Int64
)

// Issued is a generated certificate together with its private key.
type Issued struct {
	Cert *x509.Certificate
	Key  *ecdsa.PrivateKey
}

// DER returns the DER encoding of the certificate.
func (i *Issued) DER() []byte { return i.Cert.Raw }

// PEM returns the certificate as a single PEM block.
func (i *Issued) PEM() []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: i.Cert.Raw})
}

// Chain concatenates the PEM encodings of certs, in order.
func Chain(certs ...*Issued) []byte {
	var out []byte
	for _, c := range certs {
		out = append(out, c.PEM()...)
	}
	return out
}

// PKI is a certificate hierarchy for submission tests.
type PKI struct {
	// Root is self-signed and is the only anchor tests are expected to trust.
	Root *Issued
	// Leaf is issued directly by Root.
	Leaf *Issued
	// Intermediate is a CA issued by Root.
	Intermediate *Issued
	// ChainLeaf is issued by Intermediate.
	ChainLeaf *Issued
	// PrecertSigner is issued by Root, is not a CA and carries the CT
	// precertificate signing extended key usage.
	PrecertSigner *Issued
	// Precert is a precertificate issued by PrecertSigner.
	Precert *Issued
	// PrecertFinal is the certificate Root issues after Precert.
	PrecertFinal *Issued
	// DirectPrecert is a precertificate issued directly by Root.
	DirectPrecert *Issued
	// DirectPrecertFinal is the certificate Root issues after DirectPrecert.
	DirectPrecertFinal *Issued
	// IntermediatePrecert is a precertificate issued by Intermediate.
	IntermediatePrecert *Issued
	// SignerLeaf is an ordinary certificate issued by PrecertSigner, which
	// is not allowed to issue ordinary certificates.
	SignerLeaf *Issued
	// LeafIssuedPrecert is a precertificate issued by Leaf, which is not a CA.
	LeafIssuedPrecert *Issued
	// ExpiredLeaf is issued by Root and expired before Now.
	ExpiredLeaf *Issued
	// UntrustedRoot is a self-signed CA nobody trusts.
	UntrustedRoot *Issued
	// UntrustedLeaf is issued by UntrustedRoot.
	UntrustedLeaf *Issued
}

// NewPKI generates a fresh hierarchy.
func NewPKI(t testing.TB) *PKI {
	t.Helper()
	p := &PKI{}
	p.Root = Issue(t, CATemplate("Certingest Test Root"), nil)
	p.Leaf = Issue(t, LeafTemplate("leaf.example.com"), p.Root)
	p.Intermediate = Issue(t, CATemplate("Certingest Test Intermediate"), p.Root)
	p.ChainLeaf = Issue(t, LeafTemplate("chain-leaf.example.com"), p.Intermediate)
	p.PrecertSigner = Issue(t, PrecertSignerTemplate("Certingest Test Precert Signer"), p.Root)

	p.Precert, p.PrecertFinal = IssuePrecert(t, LeafTemplate("precert.example.com"), p.PrecertSigner, p.Root)
	p.DirectPrecert, p.DirectPrecertFinal = IssuePrecert(t, LeafTemplate("direct-precert.example.com"), p.Root, p.Root)
	p.IntermediatePrecert, _ = IssuePrecert(t, LeafTemplate("intermediate-precert.example.com"), p.Intermediate, p.Intermediate)
	p.SignerLeaf = Issue(t, LeafTemplate("signer-leaf.example.com"), p.PrecertSigner)
	p.LeafIssuedPrecert, _ = IssuePrecert(t, LeafTemplate("leaf-issued-precert.example.com"), p.Leaf, p.Leaf)

	expired := LeafTemplate("expired.example.com")
	expired.NotBefore = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expired.NotAfter = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	p.ExpiredLeaf = Issue(t, expired, p.Root)

	p.UntrustedRoot = Issue(t, CATemplate("Certingest Untrusted Root"), nil)
	p.UntrustedLeaf = Issue(t, LeafTemplate("untrusted.example.com"), p.UntrustedRoot)
	return p
}

// CATemplate returns a template for a certificate authority.
func CATemplate(cn string) *x509.Certificate {
	return &x509.Certificate{
		SerialNumber:          nextSerial(),
		Subject:               pkix.Name{CommonName: cn, Organization: []string{"Certingest Test"}},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
}

// LeafTemplate returns a template for a TLS server certificate.
func LeafTemplate(dnsName string) *x509.Certificate {
	return &x509.Certificate{
		SerialNumber:          nextSerial(),
		Subject:               pkix.Name{CommonName: dnsName},
		DNSNames:              []string{dnsName},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
}

// PrecertSignerTemplate returns a template for a precertificate signing
// certificate. It carries an explicit subject key id so that precertificates
// it signs get an Authority Key Identifier to rewrite.
func PrecertSignerTemplate(cn string) *x509.Certificate {
	return &x509.Certificate{
		SerialNumber:          nextSerial(),
		Subject:               pkix.Name{CommonName: cn, Organization: []string{"Certingest Test"}},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature,
		UnknownExtKeyUsage:    []asn1.ObjectIdentifier{oidCTPrecertEKU},
		BasicConstraintsValid: true,
		SubjectKeyId:          precertSignerSKID,
	}
}

// Issue signs tmpl with parent's key, or self-signs it if parent is nil.
func Issue(t testing.TB, tmpl *x509.Certificate, parent *Issued) *Issued {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return issueWithKey(t, tmpl, parent, key)
}

// Reissue returns a new self-signed certificate with the subject and key of
// orig, so it has the same identity but a different encoding.
func Reissue(t testing.TB, orig *Issued) *Issued {
	t.Helper()
	tmpl := CATemplate(orig.Cert.Subject.CommonName)
	tmpl.RawSubject = orig.Cert.RawSubject
	return issueWithKey(t, tmpl, nil, orig.Key)
}

// Forge returns a self-issued certificate carrying the subject and public key
// of victim and the given DNS names, signed by a key unrelated to victim's. Its
// signature does not verify under victim's key.
func Forge(t testing.TB, victim *Issued, dnsNames ...string) *Issued {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	tmpl := CATemplate(victim.Cert.Subject.CommonName)
	tmpl.RawSubject = victim.Cert.RawSubject
	tmpl.DNSNames = dnsNames
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, victim.Cert.PublicKey, key)
	if err != nil {
		t.Fatalf("failed to forge certificate %q: %v", victim.Cert.Subject.CommonName, err)
	}
	c, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("failed to parse forged certificate: %v", err)
	}
	return &Issued{Cert: c, Key: key}
}

// IssuePrecert issues a precertificate from tmpl signed by signer, and the
// final certificate that finalIssuer issues from the same template and key.
func IssuePrecert(t testing.TB, tmpl *x509.Certificate, signer, finalIssuer *Issued) (precert, final *Issued) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	poisoned := *tmpl
	poisoned.ExtraExtensions = append([]pkix.Extension{}, tmpl.ExtraExtensions...)
	poisoned.ExtraExtensions = append(poisoned.ExtraExtensions, pkix.Extension{Id: oidCTPoison, Critical: true, Value: asn1.NullBytes})
	precert = issueWithKey(t, &poisoned, signer, key)
	final = issueWithKey(t, tmpl, finalIssuer, key)
	return precert, final
}

func issueWithKey(t testing.TB, tmpl *x509.Certificate, parent *Issued, key *ecdsa.PrivateKey) *Issued {
	t.Helper()
	parentCert, signer := tmpl, key
	if parent != nil {
		parentCert, signer = parent.Cert, parent.Key
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, parentCert, &key.PublicKey, signer)
	if err != nil {
		t.Fatalf("failed to create certificate %q: %v", tmpl.Subject.CommonName, err)
	}
	c, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("failed to parse certificate %q: %v", tmpl.Subject.CommonName, err)
	}
	return &Issued{Cert: c, Key: key}
}

func nextSerial() *big.Int {
	return big.NewInt(1000 + serial.Add(1))
}
