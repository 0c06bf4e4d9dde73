package complaints

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

var exportHeader = []string{
	"id", "complaint_number", "created_at", "category", "sub_category", "description", "attachment_path",
	"full_name", "phone", "email", "pan", "address", "dob",
	"broker_name", "exchange_name", "client_or_dp",
	"company_name", "holding_mode", "folio_number", "demat_account_number",
	"mutual_fund_name", "investment_advisor_name",
}

const exportPage = 200

// ExportCSV writes every complaint matching f.Query to w, newest first.
// f.Limit caps the total; zero exports everything.
func ExportCSV(ctx context.Context, repo Repository, w io.Writer, f ListFilter) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, err
	}

	total := f.Limit
	written := 0
	offset := f.Offset
	for total <= 0 || written < total {
		page := exportPage
		if total > 0 && total-written < page {
			page = total - written
		}
		rows, err := repo.List(ctx, ListFilter{Query: f.Query, Limit: page, Offset: offset})
		if err != nil {
			return written, err
		}
		for _, c := range rows {
			if err := cw.Write(exportRow(c)); err != nil {
				return written, err
			}
			written++
		}
		if len(rows) < page {
			break
		}
		offset += len(rows)
	}
	cw.Flush()
	return written, cw.Error()
}

func exportRow(c Complaint) []string {
	d := c.Details
	return []string{
		strconv.FormatInt(c.ID, 10), c.Number, c.CreatedAt.UTC().Format(time.RFC3339),
		c.Category, c.SubCategory, c.Description, c.AttachmentPath,
		d.FullName, d.Phone, d.Email, d.PAN, d.Address, d.DOB,
		d.BrokerName, d.ExchangeName, d.ClientOrDP,
		d.CompanyName, string(d.HoldingMode), d.FolioNumber, d.DematAccountNumber,
		d.MutualFundName, d.InvestmentAdviserName,
	}
}
