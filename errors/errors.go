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

package errors

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code identifies the reason a submission or trust anchor was rejected.
type Code int

const (
	// OK is the code of a nil error.
	OK Code = iota
	// EmptySubmission means no certificate material was supplied.
	EmptySubmission
	// InvalidPemEncodedChain means the submission could not be decoded into
	// at least one certificate.
	InvalidPemEncodedChain
	// InvalidCertificate means a certificate's structure is otherwise
	// unusable.
	InvalidCertificate
	// InvalidCertificateChain means adjacent certificates do not link, or
	// were submitted out of order, or an issuer may not issue this entry type.
	InvalidCertificateChain
	// UnknownRoot means the chain is consistent but no trust anchor resolves
	// it.
	UnknownRoot
	// PrecertSubmittedAsX509 means a poisoned leaf was submitted as an
	// ordinary certificate.
	PrecertSubmittedAsX509
	// NotAPrecertificate means a leaf without the poison extension was
	// submitted as a precertificate.
	NotAPrecertificate
	// PrecertIssuerNotCa means the issuer of a precertificate is neither a
	// CA nor a precertificate signing certificate issued by a CA.
	PrecertIssuerNotCa
	// PrecertNoTbsCertificate means the precertificate TBS could not be
	// reconstructed.
	PrecertNoTbsCertificate
	// InvalidAnchorCertificate means a trust anchor failed to decode.
	InvalidAnchorCertificate
	// UnknownEntryType means the requested entry type is not supported.
	UnknownEntryType
	// Unknown is the code of errors that did not originate in this package.
	Unknown
)

var codeNames = map[Code]string{
	OK:                       "OK",
	EmptySubmission:          "EMPTY_SUBMISSION",
	InvalidPemEncodedChain:   "INVALID_PEM_ENCODED_CHAIN",
	InvalidCertificate:       "INVALID_CERTIFICATE",
	InvalidCertificateChain:  "INVALID_CERTIFICATE_CHAIN",
	UnknownRoot:              "UNKNOWN_ROOT",
	PrecertSubmittedAsX509:   "PRECERT_SUBMITTED_AS_X509",
	NotAPrecertificate:       "NOT_A_PRECERTIFICATE",
	PrecertIssuerNotCa:       "PRECERT_ISSUER_NOT_CA",
	PrecertNoTbsCertificate:  "PRECERT_NO_TBS_CERTIFICATE",
	InvalidAnchorCertificate: "INVALID_ANCHOR_CERTIFICATE",
	UnknownEntryType:         "UNKNOWN_ENTRY_TYPE",
	Unknown:                  "UNKNOWN",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// GRPCCode returns the gRPC code that best describes c from the submitter's
// point of view.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case OK:
		return codes.OK
	case UnknownRoot, InvalidAnchorCertificate:
		return codes.FailedPrecondition
	case Unknown:
		return codes.Unknown
	default:
		return codes.InvalidArgument
	}
}

// SubmissionError is an error with a rejection Code.
type SubmissionError interface {
	error
	Code() Code
}

type submissionError struct {
	code Code
	msg  string
	err  error
}

func (e *submissionError) Error() string { return e.msg }

func (e *submissionError) Code() Code { return e.code }

func (e *submissionError) Unwrap() error { return e.err }

// GRPCStatus allows status.FromError and status.Code to see the rejection.
func (e *submissionError) GRPCStatus() *status.Status {
	return status.New(e.code.GRPCCode(), e.msg)
}

// New creates a SubmissionError from the specified code and message.
func New(code Code, msg string) error {
	return &submissionError{code: code, msg: msg}
}

// Errorf creates a SubmissionError from the specified code and formatted
// message. A %w verb in format keeps the wrapped error reachable through
// errors.Unwrap.
func Errorf(code Code, format string, a ...interface{}) error {
	err := fmt.Errorf(format, a...)
	return &submissionError{code: code, msg: err.Error(), err: errors.Unwrap(err)}
}

// CodeOf returns the Code of the first SubmissionError in err's chain, OK for
// a nil error and Unknown for anything else.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var serr SubmissionError
	if errors.As(err, &serr) {
		return serr.Code()
	}
	return Unknown
}
