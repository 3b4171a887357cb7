// Package cfdi reads Mexican electronic invoices (CFDI) uploaded by providers
// and prepares them for registration against provider settlements.
//
// Supported documents:
//   - CFDI 3.3 and 4.0 comprobantes (any namespace prefix)
//   - Fiscal stamp (TimbreFiscalDigital) UUID inside the Complemento element
//
// Amounts are read as decimals exactly as written in the XML. The package never
// talks to the backend: it produces the upload payload and the per-row amount
// plan that the CLI sends.
package cfdi

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cxc/internal/reconciliation"
	"cxc/pkg/models"
)

// Party is the issuer (Emisor) or the receiver (Receptor) of a CFDI.
type Party struct {
	RFC     string
	Nombre  string
	Regimen string
	UsoCFDI string
}

// Concepto is one line item of the invoice.
type Concepto struct {
	ClaveProdServ string
	Descripcion   string
	Cantidad      decimal.Decimal
	ValorUnitario decimal.Decimal
	Importe       decimal.Decimal
}

// Comprobante is the subset of a CFDI needed to register and reconcile it.
type Comprobante struct {
	Version           string
	Serie             string
	Folio             string
	Fecha             time.Time
	TipoDeComprobante string
	Moneda            string
	MetodoPago        string
	FormaPago         string

	SubTotal  decimal.Decimal
	Descuento decimal.Decimal
	Total     decimal.Decimal

	TotalTraslados   decimal.Decimal
	TotalRetenciones decimal.Decimal

	Emisor    Party
	Receptor  Party
	Conceptos []Concepto

	UUID          string
	FechaTimbrado time.Time
}

// Impuestos returns the net tax amount (transferred minus withheld).
func (c *Comprobante) Impuestos() decimal.Decimal {
	return c.TotalTraslados.Sub(c.TotalRetenciones)
}

type xmlComprobante struct {
	XMLName           xml.Name
	Version           string `xml:"Version,attr"`
	LegacyVersion     string `xml:"version,attr"`
	Serie             string `xml:"Serie,attr"`
	Folio             string `xml:"Folio,attr"`
	Fecha             string `xml:"Fecha,attr"`
	SubTotal          string `xml:"SubTotal,attr"`
	Descuento         string `xml:"Descuento,attr"`
	Total             string `xml:"Total,attr"`
	Moneda            string `xml:"Moneda,attr"`
	TipoDeComprobante string `xml:"TipoDeComprobante,attr"`
	MetodoPago        string `xml:"MetodoPago,attr"`
	FormaPago         string `xml:"FormaPago,attr"`

	Emisor struct {
		Rfc           string `xml:"Rfc,attr"`
		Nombre        string `xml:"Nombre,attr"`
		RegimenFiscal string `xml:"RegimenFiscal,attr"`
	} `xml:"Emisor"`

	Receptor struct {
		Rfc     string `xml:"Rfc,attr"`
		Nombre  string `xml:"Nombre,attr"`
		UsoCFDI string `xml:"UsoCFDI,attr"`
	} `xml:"Receptor"`

	Conceptos []struct {
		ClaveProdServ string `xml:"ClaveProdServ,attr"`
		Cantidad      string `xml:"Cantidad,attr"`
		Descripcion   string `xml:"Descripcion,attr"`
		ValorUnitario string `xml:"ValorUnitario,attr"`
		Importe       string `xml:"Importe,attr"`
	} `xml:"Conceptos>Concepto"`

	Impuestos struct {
		TotalTrasladados string `xml:"TotalImpuestosTrasladados,attr"`
		TotalRetenidos   string `xml:"TotalImpuestosRetenidos,attr"`
	} `xml:"Impuestos"`

	Timbre struct {
		UUID          string `xml:"UUID,attr"`
		FechaTimbrado string `xml:"FechaTimbrado,attr"`
	} `xml:"Complemento>TimbreFiscalDigital"`
}

// Parse reads a CFDI document. Syntax errors and unreadable amounts are
// returned as *ParseError; a document whose root is not a Comprobante matches
// ErrNotCFDI.
func Parse(r io.Reader) (*Comprobante, error) {
	var raw xmlComprobante
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, &ParseError{Err: err}
	}
	if raw.XMLName.Local != "Comprobante" {
		return nil, &ParseError{
			Field: "root element",
			Value: raw.XMLName.Local,
			Err:   ErrNotCFDI,
		}
	}

	p := &attrParser{}
	c := &Comprobante{
		Version:           firstNonEmpty(raw.Version, raw.LegacyVersion),
		Serie:             strings.TrimSpace(raw.Serie),
		Folio:             strings.TrimSpace(raw.Folio),
		Fecha:             models.ParseDate(raw.Fecha).Time,
		TipoDeComprobante: strings.TrimSpace(raw.TipoDeComprobante),
		Moneda:            strings.TrimSpace(raw.Moneda),
		MetodoPago:        strings.TrimSpace(raw.MetodoPago),
		FormaPago:         strings.TrimSpace(raw.FormaPago),
		SubTotal:          p.amount("SubTotal", raw.SubTotal),
		Descuento:         p.amount("Descuento", raw.Descuento),
		Total:             p.amount("Total", raw.Total),
		TotalTraslados:    p.amount("TotalImpuestosTrasladados", raw.Impuestos.TotalTrasladados),
		TotalRetenciones:  p.amount("TotalImpuestosRetenidos", raw.Impuestos.TotalRetenidos),
		Emisor: Party{
			RFC:     reconciliation.NormalizeRFC(raw.Emisor.Rfc),
			Nombre:  strings.TrimSpace(raw.Emisor.Nombre),
			Regimen: strings.TrimSpace(raw.Emisor.RegimenFiscal),
		},
		Receptor: Party{
			RFC:     reconciliation.NormalizeRFC(raw.Receptor.Rfc),
			Nombre:  strings.TrimSpace(raw.Receptor.Nombre),
			UsoCFDI: strings.TrimSpace(raw.Receptor.UsoCFDI),
		},
		UUID:          strings.ToUpper(strings.TrimSpace(raw.Timbre.UUID)),
		FechaTimbrado: models.ParseDate(raw.Timbre.FechaTimbrado).Time,
	}

	for i, con := range raw.Conceptos {
		field := fmt.Sprintf("Concepto[%d]", i)
		c.Conceptos = append(c.Conceptos, Concepto{
			ClaveProdServ: strings.TrimSpace(con.ClaveProdServ),
			Descripcion:   strings.TrimSpace(con.Descripcion),
			Cantidad:      p.amount(field+".Cantidad", con.Cantidad),
			ValorUnitario: p.amount(field+".ValorUnitario", con.ValorUnitario),
			Importe:       p.amount(field+".Importe", con.Importe),
		})
	}

	if p.err != nil {
		return nil, p.err
	}
	return c, nil
}

// attrParser keeps the first attribute error so Parse can read every field
// before reporting.
type attrParser struct {
	err *ParseError
}

func (p *attrParser) amount(field, value string) decimal.Decimal {
	s := strings.TrimSpace(value)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		if p.err == nil {
			p.err = &ParseError{Field: field, Value: value, Err: err}
		}
		return decimal.Zero
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

