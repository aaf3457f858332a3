/*
Package testonly contains code and data that should only be used by tests.
Production code MUST NOT depend on anything in this package. This will be enforced
by tools where possible.

The certificate hierarchy built here mirrors the fixtures used by the CT log
submission tests: a trusted root, leaves issued directly and through an
intermediate, and precertificates issued directly and through a precertificate
signing certificate. Certificates are generated freshly for each test so no key
material is checked in.
*/
package testonly
