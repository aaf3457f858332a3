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
	"github.com/google/certingest/cert"
	te "github.com/google/certingest/errors"
)

// CheckCAIssuers checks that every submitted certificate from position from
// onwards is an ordinary CA. A submitted trust anchor is exempt, as the
// operator chose to trust it.
func CheckCAIssuers(c *Chain, from int) error {
	for i := from; i < len(c.Certs); i++ {
		if c.AnchorListed && i == len(c.Certs)-1 {
			break
		}
		if role := cert.ClassifyIssuer(c.Certs[i]); role != cert.RoleCA {
			return te.Errorf(te.InvalidCertificateChain, "certificate %d %s may not issue certificates (role %v)", i, c.Certs[i], role)
		}
	}
	return nil
}
