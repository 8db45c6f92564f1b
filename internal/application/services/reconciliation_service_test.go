package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medkb/billing-kb/internal/application/services"
	"github.com/medkb/billing-kb/internal/domain/entities"
)

const completeReply = `Here is what I have so far.
{
  "patientName": "Jane Doe",
  "ohip": "1234567890",
  "billingDate": "2025-03-14",
  "services": [
    {"serviceCode": "A001", "serviceName": "Minor assessment", "unitPrice": 23.75},
    {"serviceCode": "A003", "serviceName": "General assessment", "unitPrice": 77.2}
  ]
}
Let me know if anything changed.`

func TestReconcile_NoJSONLeavesReplyUntouched(t *testing.T) {
	svc := services.NewReconciliationService()

	result := svc.Reconcile("Could you give me the patient's name?")

	assert.Equal(t, "Could you give me the patient's name?", result.Reply)
	assert.Empty(t, result.BillInfo)
	assert.Equal(t, []string{"patientName", "ohipNumber", "serviceDate"}, result.MissingFields)
}

func TestReconcile_NormalizesAliases(t *testing.T) {
	svc := services.NewReconciliationService()

	result := svc.Reconcile(completeReply)

	assert.Equal(t, "Jane Doe", result.BillInfo[entities.BillFieldPatientName])
	assert.Equal(t, "1234567890", result.BillInfo[entities.BillFieldOHIPNumber])
	assert.Equal(t, "2025-03-14", result.BillInfo[entities.BillFieldServiceDate])

	serviceList := result.BillInfo.ServiceList()
	require.Len(t, serviceList, 2)
	assert.Equal(t, "A001", serviceList[0]["code"])
	assert.Equal(t, "Minor assessment", serviceList[0]["name"])
	assert.Equal(t, 23.75, serviceList[0]["amount"])
}

func TestReconcile_SelectsHighestFeeService(t *testing.T) {
	svc := services.NewReconciliationService()

	result := svc.Reconcile(completeReply)

	optimal, ok := result.BillInfo[entities.BillFieldOptimalService].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "A003", optimal["code"])
}

func TestReconcile_CompleteBillGetsSummary(t *testing.T) {
	svc := services.NewReconciliationService()

	result := svc.Reconcile(completeReply)

	assert.Empty(t, result.MissingFields)
	assert.Contains(t, result.Reply, "Billing summary:")
	assert.Contains(t, result.Reply, "Patient: Jane Doe")
	assert.Contains(t, result.Reply, "Service 1: Minor assessment (Code: A001, Fee: $23.75)")
	assert.Contains(t, result.Reply, "Service 2: General assessment (Code: A003, Fee: $77.2)")
	assert.Contains(t, result.Reply, "The selected service is General assessment (Code: A003) for $77.2, because this service yields the highest reimbursement among the options.")
	assert.Contains(t, result.Reply, "\n\n---\n"+completeReply)
}

func TestReconcile_MissingEssentialSuppressesSummary(t *testing.T) {
	svc := services.NewReconciliationService()
	reply := `{"patientName": "Jane Doe", "services": [{"serviceCode": "A001", "serviceName": "Minor assessment", "unitPrice": 23.75}]}`

	result := svc.Reconcile(reply)

	assert.Equal(t, []string{"ohipNumber", "serviceDate"}, result.MissingFields)
	assert.Equal(t, reply, result.Reply)
}

func TestReconcile_EmptyStringFieldCountsAsMissing(t *testing.T) {
	svc := services.NewReconciliationService()
	reply := `{"patientName": "  ", "ohip": "1234567890", "serviceDate": "2025-03-14"}`

	result := svc.Reconcile(reply)

	assert.Equal(t, []string{"patientName"}, result.MissingFields)
}

func TestReconcile_NoServicesSuppressesSummary(t *testing.T) {
	svc := services.NewReconciliationService()
	reply := `{"patientName": "Jane Doe", "ohip": "1234567890", "serviceDate": "2025-03-14"}`

	result := svc.Reconcile(reply)

	assert.Empty(t, result.MissingFields)
	assert.Equal(t, reply, result.Reply)
}

func TestOptimalService_StringAmountsAndTies(t *testing.T) {
	svc := services.NewReconciliationService()

	first := map[string]any{"code": "A001", "amount": "$45.00"}
	second := map[string]any{"code": "A002", "amount": "45.00"}
	third := map[string]any{"code": "A003", "amount": "not a number"}

	optimal, ok := svc.OptimalService([]map[string]any{first, second, third})

	require.True(t, ok)
	// ties keep the first candidate; the unparsable amount counts as zero
	assert.Equal(t, "A001", optimal["code"])
}

func TestOptimalService_EmptyList(t *testing.T) {
	svc := services.NewReconciliationService()

	_, ok := svc.OptimalService(nil)
	assert.False(t, ok)
}

func TestExtractBillInfo_MalformedJSON(t *testing.T) {
	svc := services.NewReconciliationService()

	_, ok := svc.ExtractBillInfo("data: {patientName: incomplete")
	assert.False(t, ok)
}
