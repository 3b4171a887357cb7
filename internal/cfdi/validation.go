package cfdi

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cxc/internal/logger"
	"cxc/internal/reconciliation"
)

// amountTolerance is the largest accepted gap between the stated total and
// the total recomputed from its components.
var amountTolerance = decimal.RequireFromString("0.02")

// Validator checks parsed comprobantes before they are registered.
type Validator struct {
	log zerolog.Logger
}

// NewValidator creates a new CFDI validator.
func NewValidator() *Validator {
	return &Validator{
		log: logger.WithComponent("cfdi-validation"),
	}
}

// ValidationResult contains the non-fatal findings of Validate.
type ValidationResult struct {
	Warnings       []string
	HasDiscrepancy bool

	// Computed is SubTotal - Descuento + Traslados - Retenciones.
	Computed decimal.Decimal

	// Discrepancy is |Computed - Total|.
	Discrepancy decimal.Decimal
}

// Validate checks required fields and cross-checks the amounts. A missing UUID,
// issuer RFC or receiver RFC, or a non-positive total, returns a
// *ValidationError. Amount mismatches are reported as warnings.
func (v *Validator) Validate(c *Comprobante) (*ValidationResult, error) {
	if c == nil {
		return nil, NewValidationError("Comprobante", nil, "document is empty")
	}

	required := []struct {
		field string
		value string
	}{
		{"TimbreFiscalDigital.UUID", c.UUID},
		{"Emisor.Rfc", c.Emisor.RFC},
		{"Receptor.Rfc", c.Receptor.RFC},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, NewValidationError(r.field, r.value, "field is required")
		}
	}
	if !c.Total.IsPositive() {
		return nil, NewValidationError("Total", c.Total.String(), "total must be positive")
	}

	result := &ValidationResult{Warnings: []string{}}

	switch c.Version {
	case "3.3", "4.0":
	default:
		result.Warnings = append(result.Warnings, fmt.Sprintf("Unsupported CFDI version %q", c.Version))
	}
	if c.TipoDeComprobante != "" && c.TipoDeComprobante != "I" {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Comprobante type %q is not an income invoice (I)", c.TipoDeComprobante))
	}
	if c.Moneda != "" && c.Moneda != "MXN" {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Currency is %s, amounts are not converted", c.Moneda))
	}
	if c.Fecha.IsZero() {
		result.Warnings = append(result.Warnings, "Issue date (Fecha) is missing or unreadable")
	}

	v.crossValidateAmounts(c, result)

	v.log.Info().
		Str("uuid", c.UUID).
		Str("rfc_emisor", c.Emisor.RFC).
		Str("total", c.Total.StringFixed(2)).
		Bool("has_discrepancy", result.HasDiscrepancy).
		Strs("warnings", result.Warnings).
		Msg("CFDI validation completed")

	return result, nil
}

// crossValidateAmounts checks SubTotal - Descuento + Traslados - Retenciones ≈ Total.
func (v *Validator) crossValidateAmounts(c *Comprobante, result *ValidationResult) {
	result.Computed = c.SubTotal.Sub(c.Descuento).Add(c.Impuestos())
	result.Discrepancy = result.Computed.Sub(c.Total).Abs()

	if result.Discrepancy.LessThanOrEqual(amountTolerance) {
		return
	}

	result.HasDiscrepancy = true
	result.Warnings = append(result.Warnings, fmt.Sprintf(
		"Amount calculation error: SubTotal(%s) - Descuento(%s) + Traslados(%s) - Retenciones(%s) = %s, but Total=%s (difference: %s)",
		c.SubTotal.StringFixed(2),
		c.Descuento.StringFixed(2),
		c.TotalTraslados.StringFixed(2),
		c.TotalRetenciones.StringFixed(2),
		result.Computed.StringFixed(2),
		c.Total.StringFixed(2),
		result.Discrepancy.StringFixed(2)))

	v.log.Warn().
		Str("computed", result.Computed.StringFixed(2)).
		Str("total", c.Total.StringFixed(2)).
		Str("difference", result.Discrepancy.StringFixed(2)).
		Msg("Amount calculation discrepancy detected")
}

// CheckIssuerRFC verifies that the invoice was issued by the provider of the
// selected rows. An empty baseline (rows without RFC) accepts any issuer.
func (v *Validator) CheckIssuerRFC(c *Comprobante, baseline string) error {
	baseline = reconciliation.NormalizeRFC(baseline)
	if baseline == "" {
		v.log.Warn().
			Str("rfc_emisor", c.Emisor.RFC).
			Msg("Selected rows have no RFC, issuer cannot be verified")
		return nil
	}
	if c.Emisor.RFC != baseline {
		return fmt.Errorf("%w: invoice issued by %s, rows belong to %s", ErrRFCMismatch, c.Emisor.RFC, baseline)
	}
	return nil
}
