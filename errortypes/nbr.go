package errortypes

import "github.com/prebid/openrtb/v20/openrtb3"

// GetNBRCodeFromError maps an error to the no-bid reason reported back to the exchange.
func GetNBRCodeFromError(err error) openrtb3.NoBidReason {
	switch ReadCode(err) {
	case BadInputErrorCode, TypeMismatchErrorCode, InvalidNumberErrorCode, ConflictingContextErrorCode, DuplicateIdentityErrorCode:
		fallthrough
	case UnsupportedProtocolErrorCode, VersionMismatchErrorCode:
		return openrtb3.NoBidInvalidRequest
	case EmptySourceErrorCode, UnknownParserSourceErrorCode, DuplicateParserErrorCode, FailedToMarshalErrorCode:
		return openrtb3.NoBidTechnicalError
	default:
		return openrtb3.NoBidUnknownError
	}
}
