package httpcodec

// statusText is the canonical reason phrase table for AddStatusStandard,
// grounded on the same code->phrase mapping net/http.StatusText exposes
// (shaped after bytesconv.go's AppendUint-style append helpers: build
// the smallest table this codec actually needs rather than importing
// net/http for it).
var statusText = map[int]string{
	100: "Continue",
	101: "Switching Protocols",
	102: "Processing",
	103: "Early Hints",

	200: "OK",
	201: "Created",
	202: "Accepted",
	203: "Non-Authoritative Information",
	204: "No Content",
	205: "Reset Content",
	206: "Partial Content",

	300: "Multiple Choices",
	301: "Moved Permanently",
	302: "Found",
	303: "See Other",
	304: "Not Modified",
	307: "Temporary Redirect",
	308: "Permanent Redirect",

	400: "Bad Request",
	401: "Unauthorized",
	402: "Payment Required",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	406: "Not Acceptable",
	407: "Proxy Authentication Required",
	408: "Request Timeout",
	409: "Conflict",
	410: "Gone",
	411: "Length Required",
	412: "Precondition Failed",
	413: "Request Entity Too Large",
	414: "Request URI Too Long",
	415: "Unsupported Media Type",
	416: "Requested Range Not Satisfiable",
	417: "Expectation Failed",
	421: "Misdirected Request",
	422: "Unprocessable Entity",
	425: "Too Early",
	426: "Upgrade Required",
	428: "Precondition Required",
	429: "Too Many Requests",
	431: "Request Header Fields Too Large",
	451: "Unavailable For Legal Reasons",

	500: "Internal Server Error",
	501: "Not Implemented",
	502: "Bad Gateway",
	503: "Service Unavailable",
	504: "Gateway Timeout",
	505: "HTTP Version Not Supported",
	511: "Network Authentication Required",
}

const unknownStatusMessage = "Unknown Status"

// StatusMessage returns the canonical reason phrase for code, or
// unknownStatusMessage if code has no entry in statusText.
func StatusMessage(code int) string {
	if m, ok := statusText[code]; ok {
		return m
	}
	return unknownStatusMessage
}

// appendStatusCode appends the exactly-three-decimal-digit rendering of
// code to dst, regardless of code's actual magnitude (per spec §4.3,
// "Numeric formatting": callers are responsible for passing a
// three-digit value; this never validates the range).
func appendStatusCode(dst []byte, code int) []byte {
	return append(dst, byte('0'+(code/100)%10), byte('0'+(code/10)%10), byte('0'+code%10))
}
