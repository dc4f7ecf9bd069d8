/*
Package reference holds the static construction reference tables: standard
trades with government survey rates, registered equipment types with their
minimum call hours, and the standard unit and weather vocabularies.

PURPOSE:
  Read-only lookup data. Lookups return absence, never an error; an unknown
  trade simply means no standard rate is available and the rate recommender
  notes that instead of failing.

The tables carry the Korean standard classifications the rates were surveyed
under; trade and equipment names are the official Korean terms.
*/
package reference

import (
	"github.com/shopspring/decimal"

	"github.com/buildledger/cost-engine/ratemath"
)

// =============================================================================
// STANDARD TRADES
// =============================================================================

// Trade is one standard labor classification with its survey rates.
type Trade struct {
	Code        string
	Name        string
	Category    string
	DailyRate   decimal.Decimal
	HourlyRate  decimal.Decimal
	Description string
}

// StandardRate returns the trade's rate in the requested unit.
func (t Trade) StandardRate(rt ratemath.RateType) decimal.Decimal {
	if rt == ratemath.RateHourly {
		return t.HourlyRate
	}
	return t.DailyRate
}

func trade(code, name, category string, daily, hourly int64, desc string) Trade {
	return Trade{
		Code:        code,
		Name:        name,
		Category:    category,
		DailyRate:   decimal.NewFromInt(daily),
		HourlyRate:  decimal.NewFromInt(hourly),
		Description: desc,
	}
}

// StandardTrades is the standard trade table, keyed for lookup by exact name.
var StandardTrades = []Trade{
	trade("001", "목공", "골조", 180000, 22500, "timber framing and assembly"),
	trade("002", "철근공", "골조", 190000, 23750, "rebar cutting and placement"),
	trade("003", "형틀목공", "골조", 200000, 25000, "concrete formwork installation"),
	trade("004", "미장공", "마감", 170000, 21250, "wall plastering and sprayed finishes"),
	trade("005", "타일공", "마감", 180000, 22500, "tile setting"),
	trade("006", "도장공", "마감", 160000, 20000, "paint and coating work"),
	trade("007", "방수공", "마감", 190000, 23750, "waterproofing"),
	trade("008", "조적공", "골조", 175000, 21875, "brick and block laying"),
	trade("009", "보통인부", "일반", 130000, 16250, "general unskilled labor"),
	trade("010", "특별인부", "일반", 150000, 18750, "skilled general labor"),
}

// LookupTrade returns the standard trade entry for an exact name match.
func LookupTrade(name string) (Trade, bool) {
	for _, t := range StandardTrades {
		if t.Name == name {
			return t, true
		}
	}
	return Trade{}, false
}

// =============================================================================
// EQUIPMENT TYPES
// =============================================================================

// EquipmentType is one registered construction machine classification.
type EquipmentType struct {
	Code            string
	Name            string
	Category        string
	InspectionCycle int // months between statutory inspections
	MinCallHours    decimal.Decimal
	Description     string
}

func equipment(code, name, category string, cycle int, minCall float64, desc string) EquipmentType {
	return EquipmentType{
		Code:            code,
		Name:            name,
		Category:        category,
		InspectionCycle: cycle,
		MinCallHours:    decimal.NewFromFloat(minCall),
		Description:     desc,
	}
}

// EquipmentTypes is the registered machine classification table.
var EquipmentTypes = []EquipmentType{
	equipment("01", "굴삭기", "토공기계", 12, 4.0, "excavation of soil and rock"),
	equipment("02", "로더", "토공기계", 12, 4.0, "loading soil and aggregate"),
	equipment("03", "불도저", "토공기계", 12, 4.0, "pushing and grading soil"),
	equipment("04", "덤프트럭", "운반기계", 12, 8.0, "hauling soil and aggregate"),
	equipment("05", "타워크레인", "양중기계", 6, 8.0, "fixed crane for high-rise work"),
	equipment("06", "트럭크레인", "양중기계", 12, 4.0, "mobile crane for heavy lifts"),
	equipment("07", "콘크리트펌프", "콘크리트기계", 12, 4.0, "concrete pumping"),
	equipment("08", "콘크리트믹서트럭", "콘크리트기계", 12, 4.0, "ready-mix transport and placement"),
	equipment("09", "아스팔트피니셔", "도로건설기계", 12, 4.0, "asphalt paving"),
	equipment("10", "로드롤러", "다짐기계", 12, 4.0, "road and subgrade compaction"),
}

// LookupEquipment returns the equipment classification for a code.
func LookupEquipment(code string) (EquipmentType, bool) {
	for _, e := range EquipmentTypes {
		if e.Code == code {
			return e, true
		}
	}
	return EquipmentType{}, false
}

// =============================================================================
// VOCABULARIES
// =============================================================================

// StandardUnits are the measurement units accepted on work items.
var StandardUnits = []string{
	"m²", "m³", "m", "ton", "EA", "식", "kg", "L", "㎡", "㎥", "매", "개소",
}

// WeatherConditions are the site weather vocabulary for daily logs.
var WeatherConditions = []string{
	"맑음", "흐림", "비", "눈", "안개", "바람", "폭우", "폭설",
}
