package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	apihttp "github.com/weisyn/bargain/internal/api/http"
	"github.com/weisyn/bargain/internal/core/message"
	"github.com/weisyn/bargain/internal/core/negotiation"
	"github.com/weisyn/bargain/internal/core/payer"
	"github.com/weisyn/bargain/pkg/utils"
)

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderReport(r *payer.Report) error {
	if globalFlags.OutputFormat == "json" {
		out := map[string]interface{}{
			"negotiation": apihttp.Summarize(r.Negotiation),
			"duplicate":   r.Duplicate,
			"errors":      r.Errors,
		}
		if r.Sent != nil {
			out["sent"] = string(r.Sent.Type)
		}
		if r.Received != nil {
			out["received"] = string(r.Received.Type)
		}
		return printJSON(out)
	}

	n := r.Negotiation
	pterm.DefaultSection.Println("negotiation " + n.ID())
	if r.Sent != nil {
		pterm.Info.Printfln("sent     %s", describe(r.Sent))
	}
	if r.Received != nil {
		pterm.Info.Printfln("received %s", describe(r.Received))
	}
	if r.Duplicate {
		pterm.Warning.Println("the payee answered with a message that was already received")
	}
	for _, e := range r.Errors {
		pterm.Error.Println(e)
	}
	pterm.Printfln("status: %s, next: %s", n.Status(), nextRole(n))
	return nil
}

func renderNegotiation(n *negotiation.Negotiation) error {
	if globalFlags.OutputFormat == "json" {
		return printJSON(map[string]interface{}{"summary": apihttp.Summarize(n), "negotiation": n})
	}

	s := apihttp.Summarize(n)
	pterm.DefaultSection.Println("negotiation " + n.ID())
	info := [][]string{
		{"status", s.Status},
		{"next", nextRole(n)},
		{"created", formatTime(s.CreatedAt)},
	}
	if s.PayerExpiry != 0 {
		info = append(info, []string{"payer expiry", formatTime(s.PayerExpiry)})
	}
	if uri := n.BargainURIForRole(message.RolePayer); uri != "" {
		info = append(info, []string{"payee uri", uri})
	}
	if err := pterm.DefaultTable.WithHasHeader(false).WithData(info).Render(); err != nil {
		return err
	}

	rows := [][]string{{"#", "type", "status", "time", "amount (BTC)", "memo / errors"}}
	for i, m := range n.Messages() {
		amount := ""
		if a, ok := m.Amount(); ok {
			amount = utils.FormatBTC(a)
		}
		note := m.Common().Memo
		if len(m.Errors) > 0 {
			note = strings.Join(m.Errors, "; ")
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1), string(m.Type), string(m.Status), formatTime(m.Common().Time), amount, note,
		})
	}
	return pterm.DefaultTable.WithHasHeader(true).WithData(rows).Render()
}

func renderList(list []*negotiation.Negotiation) error {
	if globalFlags.OutputFormat == "json" {
		out := make([]apihttp.Summary, 0, len(list))
		for _, n := range list {
			out = append(out, apihttp.Summarize(n))
		}
		return printJSON(out)
	}
	if len(list) == 0 {
		pterm.Info.Println("no negotiations")
		return nil
	}
	rows := [][]string{{"id", "status", "messages", "last", "next", "created"}}
	for _, n := range list {
		s := apihttp.Summarize(n)
		rows = append(rows, []string{s.ID, s.Status, strconv.Itoa(s.Messages), s.LastType, nextRole(n), formatTime(s.CreatedAt)})
	}
	return pterm.DefaultTable.WithHasHeader(true).WithData(rows).Render()
}

func describe(m *message.Message) string {
	if a, ok := m.Amount(); ok {
		return fmt.Sprintf("%s (%s BTC)", m.Type, utils.FormatBTC(a))
	}
	return string(m.Type)
}

func nextRole(n *negotiation.Negotiation) string {
	if r := n.NextActiveRole(); r != message.RoleNone {
		return string(r)
	}
	return "-"
}

func formatTime(unix int64) string {
	if unix == 0 {
		return "-"
	}
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}
