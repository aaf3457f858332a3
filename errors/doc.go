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

// Package errors defines an error representation that associates an error
// message with a submission rejection code.
//
// Every way in which a submission can be rejected maps to exactly one Code.
// Callers translate codes into user-facing responses (for example gRPC status
// codes via GRPCStatus) without losing the precise rejection reason.
//
// Errors created by this package are meant to be user-visible, therefore
// messages should describe the problem from the perspective of the submitter.
package errors
