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

package chain

import (
	"testing"
	"time"

	"github.com/google/certingest/cert"
	te "github.com/google/certingest/errors"
	"github.com/google/certingest/testonly"
	"github.com/google/certingest/trust"
	clocktesting "k8s.io/utils/clock/testing"
)

func parseAll(t *testing.T, issued ...*testonly.Issued) []*cert.Certificate {
	t.Helper()
	var certs []*cert.Certificate
	for _, i := range issued {
		c, err := cert.Parse(i.DER())
		if err != nil {
			t.Fatalf("Parse(%s): %v", i.Cert.Subject, err)
		}
		certs = append(certs, c)
	}
	return certs
}

func storeOf(t *testing.T, anchors ...*testonly.Issued) *trust.Store {
	t.Helper()
	b := trust.NewBuilder()
	for _, c := range parseAll(t, anchors...) {
		b.AddCert(c)
	}
	return b.Build()
}

func TestValidate(t *testing.T) {
	pki := testonly.NewPKI(t)
	roots := storeOf(t, pki.Root)
	v := NewValidator(Options{})
	// Same subject and key as the root, signed by somebody else.
	forged := testonly.Forge(t, pki.Root, "victim.example.com")

	for _, test := range []struct {
		desc          string
		certs         []*testonly.Issued
		wantCode      te.Code
		wantListed    bool
		wantNonAnchor int
	}{
		{desc: "leaf only", certs: []*testonly.Issued{pki.Leaf}, wantNonAnchor: 1},
		{desc: "leaf and root", certs: []*testonly.Issued{pki.Leaf, pki.Root}, wantListed: true, wantNonAnchor: 1},
		{desc: "leaf and intermediate", certs: []*testonly.Issued{pki.ChainLeaf, pki.Intermediate}, wantNonAnchor: 2},
		{desc: "full chain", certs: []*testonly.Issued{pki.ChainLeaf, pki.Intermediate, pki.Root}, wantListed: true, wantNonAnchor: 2},
		{desc: "root only", certs: []*testonly.Issued{pki.Root}, wantListed: true, wantNonAnchor: 1},
		{desc: "reissued root listed", certs: []*testonly.Issued{pki.Leaf, testonly.Reissue(t, pki.Root)}, wantListed: true, wantNonAnchor: 1},
		// Linkage ignores the CA flag; issuing policy is per entry type.
		{desc: "precert signer", certs: []*testonly.Issued{pki.Precert, pki.PrecertSigner}, wantNonAnchor: 2},
		{desc: "expired accepted", certs: []*testonly.Issued{pki.ExpiredLeaf}, wantNonAnchor: 1},
		{desc: "empty", certs: nil, wantCode: te.EmptySubmission},
		{desc: "missing intermediate", certs: []*testonly.Issued{pki.ChainLeaf}, wantCode: te.UnknownRoot},
		{desc: "reversed", certs: []*testonly.Issued{pki.Intermediate, pki.ChainLeaf}, wantCode: te.InvalidCertificateChain},
		{desc: "unrelated appended", certs: []*testonly.Issued{pki.Leaf, pki.Root, pki.UntrustedRoot}, wantCode: te.InvalidCertificateChain},
		{desc: "gap", certs: []*testonly.Issued{pki.ChainLeaf, pki.Root}, wantCode: te.InvalidCertificateChain},
		{desc: "untrusted", certs: []*testonly.Issued{pki.UntrustedLeaf, pki.UntrustedRoot}, wantCode: te.UnknownRoot},
		{desc: "untrusted leaf only", certs: []*testonly.Issued{pki.UntrustedLeaf}, wantCode: te.UnknownRoot},
		{desc: "forged root only", certs: []*testonly.Issued{forged}, wantCode: te.UnknownRoot},
		{desc: "forged root on top", certs: []*testonly.Issued{pki.Leaf, forged}, wantCode: te.UnknownRoot},
		{desc: "forged root above intermediate", certs: []*testonly.Issued{pki.ChainLeaf, pki.Intermediate, forged}, wantCode: te.UnknownRoot},
	} {
		t.Run(test.desc, func(t *testing.T) {
			ch, err := v.Validate(roots, parseAll(t, test.certs...))
			if code := te.CodeOf(err); code != test.wantCode {
				t.Fatalf("Validate()=_, %v; want code %v", err, test.wantCode)
			}
			if err != nil {
				return
			}
			if !ch.Anchor.SameIdentity(parseAll(t, pki.Root)[0]) {
				t.Errorf("Anchor=%s, want root", ch.Anchor)
			}
			if ch.AnchorListed != test.wantListed {
				t.Errorf("AnchorListed=%v, want %v", ch.AnchorListed, test.wantListed)
			}
			if got := len(ch.NonAnchor()); got != test.wantNonAnchor {
				t.Errorf("len(NonAnchor())=%d, want %d", got, test.wantNonAnchor)
			}
			if got, want := len(ch.Path()), len(test.certs); test.wantListed && got != want {
				t.Errorf("len(Path())=%d, want %d", got, want)
			} else if !test.wantListed && got != want+1 {
				t.Errorf("len(Path())=%d, want %d", got, want+1)
			}
			if !ch.Leaf().Equal(parseAll(t, test.certs[0])[0]) {
				t.Errorf("Leaf()=%s, want the first submitted certificate", ch.Leaf())
			}
		})
	}
}

func TestValidateIntermediates(t *testing.T) {
	pki := testonly.NewPKI(t)
	v := NewValidator(Options{})
	roots := storeOf(t, pki.Root)
	for _, test := range []struct {
		desc  string
		certs []*testonly.Issued
		want  int
	}{
		{desc: "leaf only", certs: []*testonly.Issued{pki.Leaf}, want: 0},
		{desc: "with intermediate", certs: []*testonly.Issued{pki.ChainLeaf, pki.Intermediate}, want: 1},
		{desc: "with intermediate and root", certs: []*testonly.Issued{pki.ChainLeaf, pki.Intermediate, pki.Root}, want: 1},
		{desc: "root only", certs: []*testonly.Issued{pki.Root}, want: 0},
	} {
		t.Run(test.desc, func(t *testing.T) {
			ch, err := v.Validate(roots, parseAll(t, test.certs...))
			if err != nil {
				t.Fatalf("Validate()=%v", err)
			}
			if got := len(ch.Intermediates()); got != test.want {
				t.Errorf("len(Intermediates())=%d, want %d", got, test.want)
			}
		})
	}
}

func TestValidateMaxLength(t *testing.T) {
	pki := testonly.NewPKI(t)
	roots := storeOf(t, pki.Root)
	certs := parseAll(t, pki.ChainLeaf, pki.Intermediate, pki.Root)

	if _, err := NewValidator(Options{MaxLength: 3}).Validate(roots, certs); err != nil {
		t.Errorf("Validate() with MaxLength 3=%v, want nil", err)
	}
	_, err := NewValidator(Options{MaxLength: 2}).Validate(roots, certs)
	if got, want := te.CodeOf(err), te.InvalidCertificateChain; got != want {
		t.Errorf("Validate() with MaxLength 2=%v, want code %v", err, want)
	}
}

func TestValidateCheckValidity(t *testing.T) {
	pki := testonly.NewPKI(t)
	roots := storeOf(t, pki.Root)
	clk := clocktesting.NewFakePassiveClock(testonly.Now)
	v := NewValidator(Options{CheckValidity: true, Clock: clk})

	if _, err := v.Validate(roots, parseAll(t, pki.ChainLeaf, pki.Intermediate)); err != nil {
		t.Errorf("Validate(current chain)=%v, want nil", err)
	}
	_, err := v.Validate(roots, parseAll(t, pki.ExpiredLeaf))
	if got, want := te.CodeOf(err), te.InvalidCertificateChain; got != want {
		t.Errorf("Validate(expired)=%v, want code %v", err, want)
	}

	// Trust is resolved before validity, so an untrusted expired chain is
	// reported as untrusted.
	clk.SetTime(time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC))
	_, err = v.Validate(roots, parseAll(t, pki.UntrustedLeaf))
	if got, want := te.CodeOf(err), te.UnknownRoot; got != want {
		t.Errorf("Validate(untrusted, expired)=%v, want code %v", err, want)
	}
	_, err = v.Validate(roots, parseAll(t, pki.Leaf))
	if got, want := te.CodeOf(err), te.InvalidCertificateChain; got != want {
		t.Errorf("Validate(leaf after expiry)=%v, want code %v", err, want)
	}
}

func TestValidateSameNameAnchors(t *testing.T) {
	pki := testonly.NewPKI(t)
	// An anchor with the root's name but another key is a candidate that
	// fails the signature check; the real root must still be found.
	tmpl := testonly.CATemplate("impostor")
	tmpl.RawSubject = pki.Root.Cert.RawSubject
	impostor := testonly.Issue(t, tmpl, nil)

	v := NewValidator(Options{})
	ch, err := v.Validate(storeOf(t, impostor, pki.Root), parseAll(t, pki.Leaf))
	if err != nil {
		t.Fatalf("Validate()=%v", err)
	}
	if !ch.Anchor.Equal(parseAll(t, pki.Root)[0]) {
		t.Errorf("Anchor=%s, want the root", ch.Anchor)
	}

	_, err = v.Validate(storeOf(t, impostor), parseAll(t, pki.Leaf))
	if got, want := te.CodeOf(err), te.UnknownRoot; got != want {
		t.Errorf("Validate() with only the impostor=%v, want code %v", err, want)
	}
}

func TestCheckCAIssuers(t *testing.T) {
	pki := testonly.NewPKI(t)
	roots := storeOf(t, pki.Root)
	v := NewValidator(Options{})
	for _, test := range []struct {
		desc     string
		certs    []*testonly.Issued
		wantCode te.Code
	}{
		{desc: "leaf only", certs: []*testonly.Issued{pki.Leaf}},
		{desc: "intermediate", certs: []*testonly.Issued{pki.ChainLeaf, pki.Intermediate, pki.Root}},
		{desc: "precert signer", certs: []*testonly.Issued{pki.SignerLeaf, pki.PrecertSigner}, wantCode: te.InvalidCertificateChain},
		{desc: "non-CA issuer", certs: []*testonly.Issued{pki.LeafIssuedPrecert, pki.Leaf}, wantCode: te.InvalidCertificateChain},
	} {
		t.Run(test.desc, func(t *testing.T) {
			ch, err := v.Validate(roots, parseAll(t, test.certs...))
			if err != nil {
				t.Fatalf("Validate()=%v", err)
			}
			err = CheckCAIssuers(ch, 1)
			if code := te.CodeOf(err); code != test.wantCode {
				t.Errorf("CheckCAIssuers()=%v, want code %v", err, test.wantCode)
			}
		})
	}
}
