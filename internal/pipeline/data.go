package pipeline

// Well-known keys of the payload passed along a chain.
const (
	KeyChainID      = "CHAIN_ID_VALUE"
	KeyTextInput    = "TEXT_INPUT_VALUE"
	KeyLocale       = "LOCALE_VALUE"
	KeyQrCodeOutput = "QR_CODE_OUTPUT_VALUE"
	KeyPublishedURI = "PUBLISHED_URI_VALUE"
	KeyEntryID      = "ENTRY_ID_VALUE"
)

// Data is the string payload handed from one step to the next.
type Data map[string]string

// Get returns the value stored under key, or "".
func (d Data) Get(key string) string {
	if d == nil {
		return ""
	}
	return d[key]
}

// Merge returns a copy of d overlaid with other.
func (d Data) Merge(other Data) Data {
	out := make(Data, len(d)+len(other))
	for k, v := range d {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}
