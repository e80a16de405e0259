package extraction

import (
	documentdomain "ladinglens-backend/internal/document/domain"
)

// DefaultCriticalFields is the field set whose absence lowers confidence
// and triggers the generative fallback. Treated as configuration because
// field-selection volatility across model choices is real; deployments
// override via EXTRACTION_CRITICAL_FIELDS.
var DefaultCriticalFields = []string{
	"bl_number",
	"shipper_name",
	"consignee_name",
	"carrier_name",
	"containers",
}

const (
	confidencePenalty = 0.1
	confidenceFloor   = 0.5
)

// MissingCriticalFields returns the names of the critical fields still
// empty on a result, in the configured order.
func MissingCriticalFields(result *documentdomain.DocumentExtraction, criticalFields []string) []string {
	var missing []string
	for _, field := range criticalFields {
		if fieldEmpty(result, field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// Score computes the deterministic confidence of a merged result: start at
// 1.0, subtract 0.1 per missing critical field, floor at 0.5. It is purely
// a function of the final result, independent of which pass filled each
// field — 1.0 therefore only occurs when every critical field is present.
func Score(result *documentdomain.DocumentExtraction, criticalFields []string) float64 {
	score := 1.0
	score -= confidencePenalty * float64(len(MissingCriticalFields(result, criticalFields)))
	if score < confidenceFloor {
		return confidenceFloor
	}
	return score
}

func fieldEmpty(result *documentdomain.DocumentExtraction, field string) bool {
	switch field {
	case "bl_number":
		return emptyStr(result.BLNumber)
	case "shipper_name":
		return emptyStr(result.ShipperName)
	case "consignee_name":
		return emptyStr(result.ConsigneeName)
	case "notify_party_name":
		return emptyStr(result.NotifyPartyName)
	case "carrier_name":
		return emptyStr(result.CarrierName)
	case "port_of_loading":
		return emptyStr(result.PortOfLoading)
	case "port_of_discharge":
		return emptyStr(result.PortOfDischarge)
	case "containers":
		return len(result.Containers) == 0
	case "etd":
		return emptyStr(result.ETD)
	case "eta":
		return emptyStr(result.ETA)
	default:
		// Unknown names in the configured set count as present so a typo
		// in config cannot drag every score to the floor.
		return false
	}
}

func emptyStr(s *string) bool {
	return s == nil || *s == ""
}
