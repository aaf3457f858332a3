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

import "github.com/google/certificate-transparency-go/x509"

// IssuerRole describes what a certificate may issue.
type IssuerRole int

const (
	// RoleNone is a certificate that may not issue anything.
	RoleNone IssuerRole = iota
	// RoleCA is an ordinary certificate authority.
	RoleCA
	// RolePrecertSigner is a precertificate signing certificate: it may only
	// sign precertificates, on behalf of the CA that issued it.
	RolePrecertSigner
)

func (r IssuerRole) String() string {
	switch r {
	case RoleCA:
		return "CA"
	case RolePrecertSigner:
		return "PrecertSigner"
	default:
		return "None"
	}
}

// ClassifyIssuer returns the issuing role of c. The CT extended key usage
// takes precedence over the CA flag.
func ClassifyIssuer(c *Certificate) IssuerRole {
	switch {
	case c.HasExtKeyUsage(x509.ExtKeyUsageCertificateTransparency):
		return RolePrecertSigner
	case c.IsCA():
		return RoleCA
	default:
		return RoleNone
	}
}
