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

package submission

import (
	"crypto/sha256"
	"fmt"
	"time"

	ct "github.com/google/certificate-transparency-go"
	"github.com/google/certificate-transparency-go/tls"
	"github.com/google/trillian"
	"github.com/transparency-dev/merkle/rfc6962"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// MerkleTreeLeaf builds the RFC 6962 leaf for entry with the given timestamp.
func MerkleTreeLeaf(entry *LogEntry, timestamp time.Time) (*ct.MerkleTreeLeaf, error) {
	tsEntry := &ct.TimestampedEntry{
		Timestamp: uint64(timestamp.UnixMilli()),
		EntryType: entry.Type,
	}
	switch entry.Type {
	case ct.X509LogEntryType:
		if entry.X509 == nil {
			return nil, fmt.Errorf("%v entry has no certificate", entry.Type)
		}
		tsEntry.X509Entry = &ct.ASN1Cert{Data: entry.X509.LeafCertificate}
	case ct.PrecertLogEntryType:
		if entry.Precert == nil {
			return nil, fmt.Errorf("%v entry has no precertificate", entry.Type)
		}
		tsEntry.PrecertEntry = &ct.PreCert{
			IssuerKeyHash:  entry.Precert.IssuerKeyHash,
			TBSCertificate: entry.Precert.TBSCertificate,
		}
	default:
		return nil, fmt.Errorf("unsupported entry type %v", entry.Type)
	}
	return &ct.MerkleTreeLeaf{
		Version:          ct.V1,
		LeafType:         ct.TimestampedEntryLeafType,
		TimestampedEntry: tsEntry,
	}, nil
}

// extraData returns the chain that accompanies the leaf in get-entries. The
// chain stops below the trust anchor, which is in LogEntry.Anchor.
func extraData(entry *LogEntry) ([]byte, error) {
	if entry.Type == ct.PrecertLogEntryType {
		pc := entry.Precert.PrecertificateChain
		chainEntry := ct.PrecertChainEntry{PreCertificate: ct.ASN1Cert{Data: entry.Precert.PreCertificate}}
		if len(pc) > 0 {
			chainEntry.CertificateChain = asn1Certs(pc[1:])
		}
		return tls.Marshal(chainEntry)
	}
	return tls.Marshal(ct.CertificateChain{Entries: asn1Certs(entry.X509.CertificateChain)})
}

func asn1Certs(raw [][]byte) []ct.ASN1Cert {
	certs := make([]ct.ASN1Cert, 0, len(raw))
	for _, der := range raw {
		certs = append(certs, ct.ASN1Cert{Data: der})
	}
	return certs
}

// BuildLogLeaf builds the LogLeaf to queue for entry. The Merkle leaf hash is
// computed here as a crosscheck on the data sent; the backend does the tree
// hashing. The identity hash covers the leaf certificate, or the
// TBSCertificate for a precertificate, so resubmissions can be recognized.
func BuildLogLeaf(entry *LogEntry, timestamp time.Time) (*trillian.LogLeaf, error) {
	leaf, err := MerkleTreeLeaf(entry, timestamp)
	if err != nil {
		return nil, err
	}
	leafData, err := tls.Marshal(*leaf)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize merkle leaf: %v", err)
	}
	entryData, err := extraData(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize chain: %v", err)
	}

	var identity [sha256.Size]byte
	if entry.Type == ct.PrecertLogEntryType {
		identity = sha256.Sum256(entry.Precert.TBSCertificate)
	} else {
		identity = sha256.Sum256(entry.X509.LeafCertificate)
	}
	return &trillian.LogLeaf{
		MerkleLeafHash:   rfc6962.DefaultHasher.HashLeaf(leafData),
		LeafValue:        leafData,
		ExtraData:        entryData,
		LeafIdentityHash: identity[:],
		QueueTimestamp:   timestamppb.New(timestamp),
	}, nil
}
