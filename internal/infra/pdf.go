package infra

// pdf.go — Ficha de personal rendered as a printable A4 legal sheet using
// go-pdf/fpdf. The renderer receives an already-resolved snapshot: it never
// queries live data. Output is written to storagePath/ficha_{dni}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/docstate"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/model"
)

// GenerateFichaPDF renders the legal personnel sheet for a ficha.
// Returns the absolute path of the generated file.
func GenerateFichaPDF(f *model.Ficha, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	filePath := filepath.Join(storagePath, fmt.Sprintf("ficha_%s.pdf", f.DNI))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "FICHA DE DATOS DE PERSONAL", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Registro Único de Administración de personal de obra", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	linea := func(etiqueta, valor string) {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(55, 6, etiqueta, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW-55, 6, valor, "", 1, "L", false, 0, "")
	}

	seccion := func(titulo string) {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(contentW, 7, titulo, "", 1, "L", true, 0, "")
		pdf.Ln(1)
	}

	// ── Datos personales ─────────────────────────────────────────────────────
	seccion("1. DATOS PERSONALES")
	linea("Apellidos y nombres:", f.Apellidos+", "+f.Nombres)
	linea("DNI:", f.DNI)
	if f.FechaNacimiento != nil {
		linea("Fecha de nacimiento:", f.FechaNacimiento.Format("02/01/2006"))
	}
	linea("Estado civil:", texto(f.EstadoCivil))
	linea("Dirección:", texto(f.Direccion)+"  "+texto(f.Distrito))
	linea("Teléfono:", texto(f.Telefono))
	if f.ContactoEmergencia != nil {
		linea("Contacto de emergencia:", *f.ContactoEmergencia+" / "+texto(f.TelefonoEmergencia))
	}

	// ── Familia ──────────────────────────────────────────────────────────────
	if f.Conyuge != nil || len(f.Hijos) > 0 {
		seccion("2. CARGA FAMILIAR")
		if f.Conyuge != nil {
			linea("Cónyuge:", f.Conyuge.Apellidos+", "+f.Conyuge.Nombres+" (DNI "+f.Conyuge.DNI+")")
		}
		for i, h := range f.Hijos {
			linea(fmt.Sprintf("Hijo/a %d:", i+1), h.Apellidos+", "+h.Nombres)
		}
	}

	// ── Datos laborales ──────────────────────────────────────────────────────
	seccion("3. DATOS LABORALES")
	linea("Cargo:", texto(f.Cargo))
	linea("Categoría:", texto(f.Categoria))
	if f.FechaIngreso != nil {
		linea("Fecha de ingreso:", f.FechaIngreso.Format("02/01/2006"))
	}
	if f.RemuneracionDiaria != nil {
		linea("Remuneración diaria:", "S/ "+f.RemuneracionDiaria.StringFixed(2))
	}
	linea("Sistema de pensión:", texto(f.SistemaPension)+" "+texto(f.NombreAFP))
	linea("CUSPP:", texto(f.CUSPP))
	linea("Banco / Cuenta:", texto(f.Banco)+" "+texto(f.CuentaBancaria))
	linea("CCI:", texto(f.CCI))
	linea("RETCC:", texto(f.RetccNumero))

	// ── Documentos legales ───────────────────────────────────────────────────
	seccion("4. DOCUMENTOS DE SEGURIDAD Y SALUD")
	for _, clave := range docstate.Claves {
		st := f.DocStates[clave]
		estado := "pendiente"
		if st.Status == docstate.StatusCompletado && st.CompletedAt != nil {
			estado = "completado el " + st.CompletedAt.Format("02/01/2006 15:04")
		}
		linea(docstate.Etiqueta(clave)+":", estado)
	}
	if f.SsomaCompletada && f.SsomaCompletadaEn != nil {
		linea("Inducción SSOMA:", "completada el "+f.SsomaCompletadaEn.Format("02/01/2006 15:04"))
	}

	// ── Declaración y firma ──────────────────────────────────────────────────
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 8)
	pdf.MultiCell(contentW, 4, "Declaro bajo juramento que los datos consignados en la presente ficha son verdaderos, sometiéndome a las verificaciones que la empresa estime convenientes.", "", "L", false)

	pdf.Ln(14)
	mitad := contentW / 2
	pdf.Line(20, pdf.GetY(), 20+mitad-15, pdf.GetY())
	pdf.Line(25+mitad, pdf.GetY(), 25+mitad+mitad-15, pdf.GetY())
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(mitad, 5, "Firma del trabajador", "", 0, "C", false, 0, "")
	pdf.CellFormat(mitad, 5, "Huella digital", "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Generado el "+time.Now().Format("02/01/2006 15:04"), "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func texto(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
