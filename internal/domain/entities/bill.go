package entities

// Bill field names as they appear in assistant replies and downstream billing
// forms. Replies are loosely structured JSON, so bill info stays a map and is
// canonicalised by the reconciliation service's alias tables.
const (
	BillFieldPatientName    = "patientName"
	BillFieldOHIPNumber     = "ohipNumber"
	BillFieldServiceDate    = "serviceDate"
	BillFieldServiceList    = "serviceList"
	BillFieldOptimalService = "optimalService"
)

// EssentialBillFields are the fields that must be present before a billing
// summary can be composed.
var EssentialBillFields = []string{BillFieldPatientName, BillFieldOHIPNumber, BillFieldServiceDate}

// BillInfo holds normalized billing information parsed from a conversational
// reply.
type BillInfo map[string]any

// ServiceList returns the canonical candidate service list, nil when absent.
func (b BillInfo) ServiceList() []map[string]any {
	raw, ok := b[BillFieldServiceList].([]map[string]any)
	if ok {
		return raw
	}
	return nil
}

// ReconcileResult is the outcome of reconciling one conversational reply.
type ReconcileResult struct {
	Reply         string   `json:"reply"`
	BillInfo      BillInfo `json:"billInfo"`
	MissingFields []string `json:"missingFields"`
}
