package services

import (
	"bytes"
	"strings"
	"testing"

	"availability-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRenderCSV_StartsWithBOM(t *testing.T) {
	data, err := renderCSV([][]string{{"a", "b"}, {"1", "2"}})

	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, utf8BOM), "Excel needs the UTF-8 BOM")
	assert.Contains(t, string(data), "a,b\n1,2\n")
}

func TestRenderCSV_QuotesFieldsWithSeparators(t *testing.T) {
	data, err := renderCSV([][]string{{"Créneaux KO"}, {"12:00 | 13:00, both"}})

	assert.NoError(t, err)
	assert.Contains(t, string(data), `"12:00 | 13:00, both"`)
}

func TestReasonLabel(t *testing.T) {
	assert.Equal(t, "Batterie faible", reasonLabel(models.ReasonBatteryLow))
	assert.Equal(t, "Pas de données", reasonLabel(models.ReasonNoData))
	assert.Equal(t, "Hors-ligne prolongé", reasonLabel(models.ReasonOfflineDuration))
	// Unknown codes pass through untranslated.
	assert.Equal(t, "SOMETHING_NEW", reasonLabel(models.ReasonCode("SOMETHING_NEW")))
}

func TestAvailabilityLabel(t *testing.T) {
	assert.Equal(t, "DISPONIBLE", availabilityLabel(true))
	assert.Equal(t, "INDISPONIBLE", availabilityLabel(false))
}

func TestFormatReasonCounts_StableOrder(t *testing.T) {
	counts := models.ReasonCounts{
		models.ReasonPaperOut:   1,
		models.ReasonBatteryLow: 3,
		models.ReasonNoData:     2,
	}

	formatted := formatReasonCounts(counts)

	// Sorted by code: BATTERY_LOW < NO_DATA < PAPER_OUT.
	parts := strings.Split(formatted, " | ")
	assert.Equal(t, []string{"Batterie faible:3", "Pas de données:2", "Plus de papier:1"}, parts)
}

func TestFormatReasonCounts_Empty(t *testing.T) {
	assert.Equal(t, "", formatReasonCounts(nil))
}
