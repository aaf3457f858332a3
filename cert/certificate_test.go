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

package cert

import (
	"bytes"
	"testing"

	"github.com/google/certificate-transparency-go/asn1"
	"github.com/google/certificate-transparency-go/x509"
	"github.com/google/certingest/testonly"
)

func mustParse(t *testing.T, i *testonly.Issued) *Certificate {
	t.Helper()
	c, err := Parse(i.DER())
	if err != nil {
		t.Fatalf("Parse(%s): %v", i.Cert.Subject, err)
	}
	return c
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte{0x30, 0x03, 0x02, 0x01}); err == nil {
		t.Fatal("Parse() accepted truncated DER")
	}
}

func TestAccessors(t *testing.T) {
	pki := testonly.NewPKI(t)
	leaf := mustParse(t, pki.Leaf)
	root := mustParse(t, pki.Root)

	if !bytes.Equal(leaf.Raw(), pki.Leaf.DER()) {
		t.Error("Raw() differs from the parsed DER")
	}
	if !bytes.Equal(leaf.RawTBS(), pki.Leaf.Cert.RawTBSCertificate) {
		t.Error("RawTBS() differs from the TBSCertificate")
	}
	if !bytes.Equal(leaf.RawIssuer(), root.RawSubject()) {
		t.Error("leaf issuer does not match root subject")
	}
	if !leaf.IssuedBy(root) {
		t.Error("IssuedBy(root)=false, want true")
	}
	if root.IssuedBy(leaf) {
		t.Error("root.IssuedBy(leaf)=true, want false")
	}
	if got, want := leaf.SubjectName(), "CN=leaf.example.com"; got != want {
		t.Errorf("SubjectName()=%q, want %q", got, want)
	}
	if !root.IsCA() || leaf.IsCA() {
		t.Errorf("IsCA() root=%v leaf=%v, want true false", root.IsCA(), leaf.IsCA())
	}
	if !leaf.ValidAt(testonly.Now) {
		t.Errorf("ValidAt(%v)=false, want true", testonly.Now)
	}
	if expired := mustParse(t, pki.ExpiredLeaf); expired.ValidAt(testonly.Now) {
		t.Errorf("expired ValidAt(%v)=true, want false", testonly.Now)
	}
	if !mustParse(t, pki.PrecertSigner).HasExtKeyUsage(x509.ExtKeyUsageCertificateTransparency) {
		t.Error("precert signer does not have the CT extended key usage")
	}
	if leaf.HasExtKeyUsage(x509.ExtKeyUsageCertificateTransparency) || !leaf.HasExtKeyUsage(x509.ExtKeyUsageServerAuth) {
		t.Error("leaf extended key usages are wrong")
	}
}

func TestEqualAndSameIdentity(t *testing.T) {
	pki := testonly.NewPKI(t)
	root := mustParse(t, pki.Root)
	again := mustParse(t, pki.Root)

	if !root.Equal(again) || !root.SameIdentity(again) {
		t.Error("a certificate is not equal to its own re-parse")
	}
	if root.Equal(nil) || root.SameIdentity(nil) {
		t.Error("a certificate is equal to nil")
	}

	reissued := mustParse(t, testonly.Reissue(t, pki.Root))
	if root.Equal(reissued) {
		t.Error("distinct encodings compare equal")
	}
	if !root.SameIdentity(reissued) {
		t.Error("reissued root does not have the same identity")
	}
	// Identity says nothing about who signed the certificate.
	if !root.SameIdentity(mustParse(t, testonly.Forge(t, pki.Root))) {
		t.Error("forged root does not have the root's identity")
	}
	if root.SameIdentity(mustParse(t, pki.UntrustedRoot)) {
		t.Error("different roots have the same identity")
	}
}

func TestCheckSignedBy(t *testing.T) {
	pki := testonly.NewPKI(t)
	for _, test := range []struct {
		desc    string
		c       *testonly.Issued
		issuer  *testonly.Issued
		wantErr bool
	}{
		{desc: "root-issued", c: pki.Leaf, issuer: pki.Root},
		{desc: "self-signed", c: pki.Root, issuer: pki.Root},
		{desc: "intermediate-issued", c: pki.ChainLeaf, issuer: pki.Intermediate},
		// Signatures are checked without regard to the CA flag.
		{desc: "non-CA issuer", c: pki.LeafIssuedPrecert, issuer: pki.Leaf},
		{desc: "wrong key", c: pki.ChainLeaf, issuer: pki.Root, wantErr: true},
		{desc: "untrusted", c: pki.UntrustedLeaf, issuer: pki.Root, wantErr: true},
		{desc: "same identity, foreign signature", c: testonly.Forge(t, pki.Root), issuer: pki.Root, wantErr: true},
	} {
		t.Run(test.desc, func(t *testing.T) {
			err := mustParse(t, test.c).CheckSignedBy(mustParse(t, test.issuer))
			if gotErr := err != nil; gotErr != test.wantErr {
				t.Errorf("CheckSignedBy()=%v, want err? %v", err, test.wantErr)
			}
		})
	}
}

func TestExtension(t *testing.T) {
	pki := testonly.NewPKI(t)
	ext, ok := mustParse(t, pki.Precert).Extension(OIDExtensionCTPoison)
	if !ok {
		t.Fatal("precert has no poison extension")
	}
	if !ext.Critical || !bytes.Equal(ext.Value, asn1.NullBytes) {
		t.Errorf("poison extension = %+v, want critical NULL", ext)
	}
	if _, ok := mustParse(t, pki.PrecertFinal).Extension(OIDExtensionCTPoison); ok {
		t.Error("final certificate has a poison extension")
	}
}

func TestClassifyIssuer(t *testing.T) {
	pki := testonly.NewPKI(t)

	// A CA that also carries the CT usage is a precertificate signer.
	caSigner := testonly.PrecertSignerTemplate("CA Precert Signer")
	caSigner.IsCA = true

	for _, test := range []struct {
		desc string
		c    *testonly.Issued
		want IssuerRole
	}{
		{desc: "root", c: pki.Root, want: RoleCA},
		{desc: "intermediate", c: pki.Intermediate, want: RoleCA},
		{desc: "precert signer", c: pki.PrecertSigner, want: RolePrecertSigner},
		{desc: "CA precert signer", c: testonly.Issue(t, caSigner, pki.Root), want: RolePrecertSigner},
		{desc: "leaf", c: pki.Leaf, want: RoleNone},
		{desc: "precert", c: pki.Precert, want: RoleNone},
	} {
		t.Run(test.desc, func(t *testing.T) {
			if got := ClassifyIssuer(mustParse(t, test.c)); got != test.want {
				t.Errorf("ClassifyIssuer()=%v, want %v", got, test.want)
			}
		})
	}
}
