package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"facturas/internal/core"
	"facturas/internal/viewstate"
)

func renderState(w io.Writer, st viewstate.ViewState) error {
	if st.Error != "" {
		fmt.Fprintln(w, st.Error)
	}
	if st.Message != viewstate.MessageNone {
		fmt.Fprintln(w, st.Message)
	}
	if len(st.Visible) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "ID\tEstado\tFecha\tImporte\n"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 12),
		strings.Repeat("─", 17),
		strings.Repeat("─", 10),
		strings.Repeat("─", 10)); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}
	for _, r := range st.Visible {
		date := r.Date
		if date == "" {
			date = "-"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Status, date, core.FormatAmount(r.Amount)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}

	source := "backend"
	if st.FromCache {
		source = "cache"
	}
	_, err := fmt.Fprintf(w, "\n%d of %d facturas (from %s, largest amount %s)\n",
		len(st.Visible), len(st.Original), source, core.FormatAmount(st.MaxAmount))
	return err
}

func renderDetails(w io.Writer, list []core.InstallationDetails) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "Installation details unavailable")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, d := range list {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "CAU\t%s\n", d.CAU)
		fmt.Fprintf(tw, "Estado de la solicitud\t%s\n", d.RequestStatus)
		fmt.Fprintf(tw, "Tipo de autoconsumo\t%s\n", d.SelfConsumptionType)
		fmt.Fprintf(tw, "Compensación\t%s\n", d.Compensation)
		fmt.Fprintf(tw, "Potencia\t%s\n", d.Power)
	}
	return tw.Flush()
}
