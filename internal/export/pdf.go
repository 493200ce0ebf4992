package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDF writes the rich-document rendering. Core fonts only cover cp1252, so
// text is translated and characters outside it are dropped by gofpdf.
func PDF(b Bundle, w io.Writer) error {
	v := b.Article.View()
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(v.Title, true)
	pdf.SetAuthor(v.Authors, true)
	pdf.SetCreator("newsdigest", false)
	pdf.AddPage()

	heading := "Article"
	summary := b.summaryText()
	if summary != "" {
		heading = "Article Summary"
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, heading, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	field := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Write(6, tr(label+": "))
		pdf.SetFont("Helvetica", "", 11)
		pdf.Write(6, tr(oneLine(value)))
		pdf.Ln(7)
	}
	field("Title", v.Title)
	field("Author(s)", v.Authors)
	field("Published", v.Published)
	if v.URL != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Write(6, "URL: ")
		pdf.SetFont("Helvetica", "U", 11)
		pdf.WriteLinkString(6, tr(v.URL), v.URL)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	section := "Content"
	body := v.Content
	if summary != "" {
		section, body = "Summary", summary
	}
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, section, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, para := range strings.Split(body, "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			pdf.Ln(3)
			continue
		}
		pdf.MultiCell(0, 5, tr(para), "", "L", false)
		pdf.Ln(2)
	}

	if st := b.stats(); st != nil {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, "Statistics", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		rows := [][2]string{
			{"Compression ratio", fmt.Sprintf("%.2f", st.CompressionRatio)},
			{"Readability grade (Flesch-Kincaid)", fmt.Sprintf("%.2f", st.ReadabilityGrade)},
			{"Reading ease (Flesch)", fmt.Sprintf("%.2f", st.ReadingEase)},
			{"Words in article", fmt.Sprintf("%d", st.OriginalWords)},
			{"Words in summary", fmt.Sprintf("%d", st.SummaryWords)},
		}
		for _, r := range rows {
			pdf.CellFormat(80, 6, r[0], "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, r[1], "", 1, "L", false, 0, "")
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
