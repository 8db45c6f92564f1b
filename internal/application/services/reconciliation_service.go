package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/medkb/billing-kb/internal/domain/entities"
)

// billInfoPattern grabs the outermost JSON object embedded in a
// conversational reply.
var billInfoPattern = regexp.MustCompile(`(\{[\s\S]*\})`)

// fieldAliases maps the top-level key variants assistants produce onto
// canonical bill field names.
var fieldAliases = map[string]string{
	"patientName":  entities.BillFieldPatientName,
	"patient_name": entities.BillFieldPatientName,
	"ohipNumber":   entities.BillFieldOHIPNumber,
	"ohip_number":  entities.BillFieldOHIPNumber,
	"ohip":         entities.BillFieldOHIPNumber,
	"serviceDate":  entities.BillFieldServiceDate,
	"service_date": entities.BillFieldServiceDate,
	"billingDate":  entities.BillFieldServiceDate,
	"serviceList":  entities.BillFieldServiceList,
	"service_list": entities.BillFieldServiceList,
	"services":     entities.BillFieldServiceList,
}

// serviceAliases maps key variants inside a service entry onto canonical
// entry field names.
var serviceAliases = map[string]string{
	"code":        "code",
	"serviceCode": "code",
	"name":        "name",
	"serviceName": "name",
	"amount":      "amount",
	"unitPrice":   "amount",
	"fee":         "amount",
}

// ReconciliationService turns loosely structured assistant replies into
// canonical bill info, flags missing essentials and selects the optimal
// service.
type ReconciliationService struct{}

// NewReconciliationService creates a new reconciliation service.
func NewReconciliationService() *ReconciliationService {
	return &ReconciliationService{}
}

// Reconcile parses the bill info out of a reply, normalizes it and, once all
// essential fields are present and at least one service is listed, prepends
// a billing summary to the reply.
func (s *ReconciliationService) Reconcile(reply string) *entities.ReconcileResult {
	result := &entities.ReconcileResult{
		Reply:         reply,
		BillInfo:      entities.BillInfo{},
		MissingFields: append([]string{}, entities.EssentialBillFields...),
	}

	info, ok := s.ExtractBillInfo(reply)
	if !ok {
		return result
	}
	result.BillInfo = info
	result.MissingFields = s.MissingFields(info)

	serviceList := info.ServiceList()
	if optimal, found := s.OptimalService(serviceList); found {
		info[entities.BillFieldOptimalService] = optimal
	}

	if len(result.MissingFields) == 0 && len(serviceList) > 0 {
		result.Reply = s.buildSummary(info) + "\n\n---\n" + reply
	}
	return result
}

// ExtractBillInfo finds the JSON object embedded in a reply and normalizes
// it. The second return is false when no parseable object is present.
func (s *ReconciliationService) ExtractBillInfo(reply string) (entities.BillInfo, bool) {
	match := billInfoPattern.FindStringSubmatch(reply)
	if match == nil {
		return nil, false
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(match[1]), &raw); err != nil {
		return nil, false
	}
	return s.normalize(raw), true
}

// normalize rewrites alias keys to canonical names, keeps unknown keys as-is
// and canonicalises the service list entries.
func (s *ReconciliationService) normalize(raw map[string]any) entities.BillInfo {
	info := entities.BillInfo{}
	for key, value := range raw {
		canonical, ok := fieldAliases[key]
		if !ok {
			canonical = key
		}
		if canonical == entities.BillFieldServiceList {
			info[canonical] = normalizeServiceList(value)
			continue
		}
		info[canonical] = value
	}
	return info
}

func normalizeServiceList(value any) []map[string]any {
	entries, ok := value.([]any)
	if !ok {
		return nil
	}

	services := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		service := make(map[string]any, len(fields))
		for key, fieldValue := range fields {
			canonical, ok := serviceAliases[key]
			if !ok {
				canonical = key
			}
			service[canonical] = fieldValue
		}
		services = append(services, service)
	}
	return services
}

// MissingFields lists the essential fields that are absent or empty.
func (s *ReconciliationService) MissingFields(info entities.BillInfo) []string {
	missing := []string{}
	for _, field := range entities.EssentialBillFields {
		value, ok := info[field]
		if !ok {
			missing = append(missing, field)
			continue
		}
		if text, isString := value.(string); isString && strings.TrimSpace(text) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// OptimalService selects the candidate with the highest amount. The first
// maximal entry wins ties; an unparsable amount counts as zero.
func (s *ReconciliationService) OptimalService(services []map[string]any) (map[string]any, bool) {
	if len(services) == 0 {
		return nil, false
	}

	best := services[0]
	bestAmount := amountOf(best)
	for _, service := range services[1:] {
		if amount := amountOf(service); amount > bestAmount {
			best = service
			bestAmount = amount
		}
	}
	return best, true
}

func amountOf(service map[string]any) float64 {
	switch amount := service["amount"].(type) {
	case float64:
		return amount
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(amount), "$"), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func (s *ReconciliationService) buildSummary(info entities.BillInfo) string {
	var b strings.Builder
	b.WriteString("Billing summary:\n")
	fmt.Fprintf(&b, "Patient: %v\n", info[entities.BillFieldPatientName])
	fmt.Fprintf(&b, "OHIP: %v\n", info[entities.BillFieldOHIPNumber])
	fmt.Fprintf(&b, "Service date: %v\n", info[entities.BillFieldServiceDate])

	for i, service := range info.ServiceList() {
		fmt.Fprintf(&b, "Service %d: %s (Code: %s, Fee: $%s)\n",
			i+1, stringOf(service["name"]), stringOf(service["code"]), formatAmount(service["amount"]))
	}

	if optimal, ok := info[entities.BillFieldOptimalService].(map[string]any); ok {
		fmt.Fprintf(&b, "The selected service is %s (Code: %s) for $%s, because this service yields the highest reimbursement among the options.",
			stringOf(optimal["name"]), stringOf(optimal["code"]), formatAmount(optimal["amount"]))
	}
	return b.String()
}

func stringOf(value any) string {
	if text, ok := value.(string); ok {
		return text
	}
	return fmt.Sprintf("%v", value)
}

// formatAmount renders an amount without a currency symbol and without
// trailing zeros, matching how numbers arrive in replies.
func formatAmount(value any) string {
	switch amount := value.(type) {
	case float64:
		return strconv.FormatFloat(amount, 'f', -1, 64)
	case string:
		return strings.TrimPrefix(strings.TrimSpace(amount), "$")
	default:
		return "0"
	}
}
