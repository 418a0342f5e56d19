package errortypes

import "fmt"

// BadInput should be used when returning errors which are caused by a malformed payload, such as
// invalid JSON or a missing required identifier.
type BadInput struct {
	Message string
}

func (err *BadInput) Error() string {
	return err.Message
}

func (err *BadInput) Code() int {
	return BadInputErrorCode
}

func (err *BadInput) Severity() Severity {
	return SeverityFatal
}

// TypeMismatch is returned when a JSON node has a kind the field cannot accept,
// e.g. an object where a number was expected.
type TypeMismatch struct {
	Path     string
	Expected string
	Found    string
}

func (err *TypeMismatch) Error() string {
	return fmt.Sprintf("%s: expected %s, found %s", pathOrRoot(err.Path), err.Expected, err.Found)
}

func (err *TypeMismatch) Code() int {
	return TypeMismatchErrorCode
}

func (err *TypeMismatch) Severity() Severity {
	return SeverityFatal
}

// InvalidNumber is returned when a numeric field holds text which does not parse as a number.
type InvalidNumber struct {
	Path  string
	Value string
}

func (err *InvalidNumber) Error() string {
	return fmt.Sprintf("%s: invalid number %q", pathOrRoot(err.Path), err.Value)
}

func (err *InvalidNumber) Code() int {
	return InvalidNumberErrorCode
}

func (err *InvalidNumber) Severity() Severity {
	return SeverityFatal
}

// ConflictingContext flags a request which declares both a site and an app.
type ConflictingContext struct {
	Message string
}

func (err *ConflictingContext) Error() string {
	return err.Message
}

func (err *ConflictingContext) Code() int {
	return ConflictingContextErrorCode
}

func (err *ConflictingContext) Severity() Severity {
	return SeverityFatal
}

// DuplicateIdentity is returned when a user id domain is added twice. An exchange must never
// be mapped to two different users.
type DuplicateIdentity struct {
	Domain string
}

func (err *DuplicateIdentity) Error() string {
	return fmt.Sprintf("attempt to double add id for domain %q", err.Domain)
}

func (err *DuplicateIdentity) Code() int {
	return DuplicateIdentityErrorCode
}

func (err *DuplicateIdentity) Severity() Severity {
	return SeverityFatal
}

// EmptySource is returned when a bid request is parsed without naming its source.
type EmptySource struct{}

func (err *EmptySource) Error() string {
	return "bid request source must not be empty"
}

func (err *EmptySource) Code() int {
	return EmptySourceErrorCode
}

func (err *EmptySource) Severity() Severity {
	return SeverityFatal
}

// UnknownParserSource is returned when no parser is registered for a source, even after
// attempting to load one.
type UnknownParserSource struct {
	Source string
}

func (err *UnknownParserSource) Error() string {
	return fmt.Sprintf("no bid request parser registered for source %q", err.Source)
}

func (err *UnknownParserSource) Code() int {
	return UnknownParserSourceErrorCode
}

func (err *UnknownParserSource) Severity() Severity {
	return SeverityFatal
}

// DuplicateParser is returned when a source is registered twice.
type DuplicateParser struct {
	Source string
}

func (err *DuplicateParser) Error() string {
	return fmt.Sprintf("bid request parser for source %q already registered", err.Source)
}

func (err *DuplicateParser) Code() int {
	return DuplicateParserErrorCode
}

func (err *DuplicateParser) Severity() Severity {
	return SeverityFatal
}

// VersionMismatch is returned when a binary payload was written by a different schema version.
type VersionMismatch struct {
	Type     string
	Expected int
	Found    int
}

func (err *VersionMismatch) Error() string {
	return fmt.Sprintf("%s: unsupported binary version %d (reader is version %d)", err.Type, err.Found, err.Expected)
}

func (err *VersionMismatch) Code() int {
	return VersionMismatchErrorCode
}

func (err *VersionMismatch) Severity() Severity {
	return SeverityFatal
}

// UnsupportedProtocol is returned by the exchange HTTP boundary when the request does not carry
// the content type or protocol version this gateway speaks.
type UnsupportedProtocol struct {
	Message string
}

func (err *UnsupportedProtocol) Error() string {
	return err.Message
}

func (err *UnsupportedProtocol) Code() int {
	return UnsupportedProtocolErrorCode
}

func (err *UnsupportedProtocol) Severity() Severity {
	return SeverityFatal
}

// FailedToMarshal is returned when a response object graph cannot be serialized.
type FailedToMarshal struct {
	Message string
}

func (err *FailedToMarshal) Error() string {
	return err.Message
}

func (err *FailedToMarshal) Code() int {
	return FailedToMarshalErrorCode
}

func (err *FailedToMarshal) Severity() Severity {
	return SeverityFatal
}

// UnparseableField records a member the schema does not model. The raw value is kept in the
// request's unparseable bag, so this is never fatal.
type UnparseableField struct {
	Path string
}

func (err *UnparseableField) Error() string {
	return fmt.Sprintf("%s: unparseable field captured", err.Path)
}

func (err *UnparseableField) Code() int {
	return UnparseableFieldWarningCode
}

func (err *UnparseableField) Severity() Severity {
	return SeverityWarning
}

// Warning is a generic non-fatal error where invalid or ambiguous data in the payload was ignored.
type Warning struct {
	Message     string
	WarningCode int
}

func (err *Warning) Error() string {
	return err.Message
}

func (err *Warning) Code() int {
	return err.WarningCode
}

func (err *Warning) Severity() Severity {
	return SeverityWarning
}

func pathOrRoot(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}
