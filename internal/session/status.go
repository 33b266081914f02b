package session

import (
	"encoding/json"
	"strings"

	"github.com/danmuck/tagcard/internal/codec"
)

const (
	StatusAvailable    = "NFC transceiver available."
	StatusNotAvailable = "NFC transceiver not available on this host."
	StatusUnsupported  = "NFC is not supported on this host."
	StatusBusy         = "NFC is busy. Please wait for any previous scan or write to finish."
	StatusEmpty        = "Profile is empty. Fill at least one field."
	StatusTouchToWrite = "Touch an NFC tag to write... (Usually 1-3 seconds)"
	StatusReadyToScan  = "Ready to scan. Bring an NFC tag close to the device..."
	StatusDetected     = "NFC tag detected."
	StatusReadError    = "Cannot read data from the NFC tag. Try again."
	StatusLoaded       = "Profile loaded from tag."
	StatusScanCanceled = "Scan canceled."

	statusWriteFailed = "Write failed: "
	statusIOError     = "Failed to write due to IO error: "
	statusScanFailed  = "Failed to start scan: "
	statusRawText     = "Tag contains text (not JSON):\n"
	statusNotFound    = "No JSON or text profile found on this tag. Raw record dump:\n"
)

// writtenStatus is the terminal message for a candidate the tag accepted.
func writtenStatus(kind codec.CandidateKind) string {
	switch kind {
	case codec.StructuredMime:
		return "Successfully wrote profile to tag as JSON."
	case codec.GenericText:
		return "Wrote profile as text record only."
	default:
		return "Wrote minimal profile as plain text."
	}
}

// readStatus is the terminal message for a decoded tag.
func readStatus(res codec.Result) string {
	switch res.Status {
	case codec.Found:
		return StatusLoaded
	case codec.RawText:
		return statusRawText + res.Text
	default:
		return statusNotFound + diagnostic(res)
	}
}

func diagnostic(res codec.Result) string {
	var b strings.Builder
	b.WriteString(strings.Join(res.Dump, "\n"))
	b.WriteString("\nRaw records:\n")
	records, err := json.MarshalIndent(res.Records, "", "  ")
	if err != nil {
		b.WriteString("[]")
		return b.String()
	}
	b.Write(records)
	return b.String()
}
