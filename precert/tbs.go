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

package precert

import (
	"errors"
	"fmt"

	"github.com/google/certificate-transparency-go/asn1"
	"github.com/google/certificate-transparency-go/x509/pkix"
	"github.com/google/certingest/cert"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var extensionsTag = cbasn1.Tag(3).Constructed().ContextSpecific()

// Position of the issuer among the universal-class TBSCertificate fields:
// serialNumber, signature, issuer, validity, subject, subjectPublicKeyInfo.
const (
	issuerField         = 2
	requiredFieldsInTBS = 6
	classMask           = 0xc0
	universalClass      = 0x00
)

// TBSEdit describes changes to make to a DER-encoded TBSCertificate.
type TBSEdit struct {
	// RemoveExtensions lists extensions to drop. Absent extensions are
	// ignored.
	RemoveExtensions []asn1.ObjectIdentifier
	// Issuer, if set, replaces the DER-encoded issuer Name.
	Issuer []byte
	// ReplaceAuthorityKeyID makes AuthorityKeyID the new value of the
	// Authority Key Identifier extension. A nil AuthorityKeyID removes the
	// extension; an extension missing from the input is appended.
	ReplaceAuthorityKeyID bool
	AuthorityKeyID        []byte
}

// RebuildTBS applies edit to tbs and returns the new DER encoding. Every field
// and extension not named in edit is copied byte for byte, in its original
// position, so an empty edit returns a copy of tbs.
func RebuildTBS(tbs []byte, edit TBSEdit) ([]byte, error) {
	input := cryptobyte.String(tbs)
	var body cryptobyte.String
	if !input.ReadASN1(&body, cbasn1.SEQUENCE) {
		return nil, errors.New("malformed TBSCertificate")
	}
	if !input.Empty() {
		return nil, fmt.Errorf("trailing data (%d bytes) after TBSCertificate", len(input))
	}

	var fields [][]byte
	universal := 0
	for !body.Empty() {
		var field cryptobyte.String
		var tag cbasn1.Tag
		if !body.ReadAnyASN1Element(&field, &tag) {
			return nil, fmt.Errorf("malformed TBSCertificate field after %d fields", len(fields))
		}
		switch {
		case tag == extensionsTag:
			exts, err := rebuildExtensions(field, edit)
			if err != nil {
				return nil, err
			}
			if exts != nil {
				fields = append(fields, exts)
			}
		case uint8(tag)&classMask == universalClass:
			if universal == issuerField && edit.Issuer != nil {
				fields = append(fields, edit.Issuer)
			} else {
				fields = append(fields, field)
			}
			universal++
		default:
			fields = append(fields, field)
		}
	}
	if universal < requiredFieldsInTBS {
		return nil, fmt.Errorf("TBSCertificate has %d of %d required fields", universal, requiredFieldsInTBS)
	}
	return encodeSequence(cbasn1.SEQUENCE, fields)
}

// rebuildExtensions applies edit to the [3] EXPLICIT Extensions field. The
// field is dropped entirely if no extensions remain, as an empty extension
// list is not valid DER for a certificate.
func rebuildExtensions(field cryptobyte.String, edit TBSEdit) ([]byte, error) {
	var explicit, list cryptobyte.String
	if !field.ReadASN1(&explicit, extensionsTag) || !explicit.ReadASN1(&list, cbasn1.SEQUENCE) || !explicit.Empty() {
		return nil, errors.New("malformed extensions field")
	}

	var kept [][]byte
	replacedAKI := false
	for !list.Empty() {
		var ext cryptobyte.String
		if !list.ReadASN1Element(&ext, cbasn1.SEQUENCE) {
			return nil, fmt.Errorf("malformed extension after %d extensions", len(kept))
		}
		id, critical, err := parseExtensionHeader(ext)
		if err != nil {
			return nil, err
		}
		switch {
		case containsOID(edit.RemoveExtensions, id):
			continue
		case edit.ReplaceAuthorityKeyID && id.Equal(cert.OIDExtensionAuthorityKeyID):
			replacedAKI = true
			if edit.AuthorityKeyID == nil {
				continue
			}
			aki, err := encodeExtension(id, critical, edit.AuthorityKeyID)
			if err != nil {
				return nil, err
			}
			kept = append(kept, aki)
		default:
			kept = append(kept, ext)
		}
	}
	if edit.ReplaceAuthorityKeyID && !replacedAKI && edit.AuthorityKeyID != nil {
		aki, err := encodeExtension(cert.OIDExtensionAuthorityKeyID, false, edit.AuthorityKeyID)
		if err != nil {
			return nil, err
		}
		kept = append(kept, aki)
	}
	if len(kept) == 0 {
		return nil, nil
	}

	list, err := encodeSequence(cbasn1.SEQUENCE, kept)
	if err != nil {
		return nil, err
	}
	return encodeSequence(extensionsTag, [][]byte{list})
}

// encodeSequence wraps already encoded elements in a constructed tag.
func encodeSequence(tag cbasn1.Tag, elements [][]byte) ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(tag, func(b *cryptobyte.Builder) {
		for _, e := range elements {
			b.AddBytes(e)
		}
	})
	return b.Bytes()
}

// parseExtensionHeader reads the extnID and critical fields of an Extension.
func parseExtensionHeader(ext cryptobyte.String) (asn1.ObjectIdentifier, bool, error) {
	var e pkix.Extension
	rest, err := asn1.Unmarshal(ext, &e)
	if err != nil {
		return nil, false, fmt.Errorf("malformed extension: %v", err)
	}
	if len(rest) > 0 {
		return nil, false, fmt.Errorf("trailing data (%d bytes) after extension %v", len(rest), e.Id)
	}
	return e.Id, e.Critical, nil
}

func encodeExtension(id asn1.ObjectIdentifier, critical bool, value []byte) ([]byte, error) {
	return asn1.Marshal(pkix.Extension{Id: id, Critical: critical, Value: value})
}

func containsOID(oids []asn1.ObjectIdentifier, id asn1.ObjectIdentifier) bool {
	for _, oid := range oids {
		if oid.Equal(id) {
			return true
		}
	}
	return false
}
