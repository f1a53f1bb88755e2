// Package report exports leaderboards as spreadsheets.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/hunterjsb/k9/internal/ledger"
)

const SheetName = "Leaderboard"

var header = []interface{}{"Rank", "User ID", "Score"}

// WriteLeaderboard writes entries as an .xlsx workbook to w. Entries are expected
// in leaderboard order.
func WriteLeaderboard(w io.Writer, guildID string, entries []ledger.ScoreEntry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetName); err != nil {
		return err
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("K9 leaderboard for guild %s", guildID),
		Creator: "K9",
	}); err != nil {
		return err
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for i, e := range entries {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{i + 1, e.UserID, e.Score}
		if err := f.SetSheetRow(SheetName, axis, &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}
