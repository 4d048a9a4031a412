// Package ofx converts OFX/QFX bank and credit-card statements into ledger
// transactions.
package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"financeiro/internal/core"
	"financeiro/internal/log"
)

// ErrNoStatements is returned for a well-formed file without any bank or
// credit-card statement.
var ErrNoStatements = errors.New("no bank or credit card statements found")

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

var cardPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
	"COMPRA CARTAO ",
	"PIX ENVIADO ",
	"PIX RECEBIDO ",
}

var genericNames = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// Parser reads OFX statements.
type Parser struct {
	logger *log.Logger
}

// NewParser creates a new OFX parser. A nil logger discards output.
func NewParser(logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.Discard()
	}
	return &Parser{logger: logger.WithComponent(log.ComponentImport)}
}

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, "\ufeff \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	// SGML files sometimes omit the closing bracket of a bare opening tag
	content = tagFixRegex.ReplaceAllString(content, "$1>")
	return content
}

// ParseFile parses an OFX/QFX file and returns candidate transactions in
// statement order. Candidates are not validated; the ledger does that on
// append.
func (p *Parser) ParseFile(ctx context.Context, r io.Reader) ([]core.Transaction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("parse OFX file: %w", err)
	}

	var out []core.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		bankStmts++
		if stmt.BankTranList != nil {
			out = append(out, p.convertAll(stmt.BankTranList.Transactions)...)
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		ccStmts++
		if stmt.BankTranList != nil {
			out = append(out, p.convertAll(stmt.BankTranList.Transactions)...)
		}
	}

	if bankStmts+ccStmts == 0 {
		return nil, ErrNoStatements
	}

	p.logger.InfoContext(ctx, "Parsed OFX file",
		"total_transactions", len(out),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)
	return out, nil
}

func (p *Parser) convertAll(txs []ofxgo.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		t, err := Convert(tx)
		if err != nil {
			p.logger.Warn("Skipping OFX transaction", "fitid", string(tx.FiTID), log.FieldError, err)
			continue
		}
		out = append(out, t)
	}
	return out
}

// Convert maps one OFX transaction onto a ledger record. Credits become
// Income and debits become Expense with the absolute amount. OFX carries no
// category, so every record lands in Other.
func Convert(tx ofxgo.Transaction) (core.Transaction, error) {
	amount, err := decimal.NewFromString(tx.TrnAmt.FloatString(2))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", tx.TrnAmt.String(), err)
	}

	kind := core.Income
	if amount.IsNegative() {
		kind = core.Expense
	}

	posted := tx.DtPosted.Time
	return core.Transaction{
		Date:        core.NewDate(posted.Year(), int(posted.Month()), posted.Day()),
		Description: Description(tx),
		Amount:      core.MoneyFromDecimal(amount.Abs()),
		Category:    core.Other,
		Kind:        kind,
	}, nil
}

// Description picks the cleanest label available: payee, then name, then
// memo when the name is empty or generic.
func Description(tx ofxgo.Transaction) string {
	if tx.Payee != nil && strings.TrimSpace(string(tx.Payee.Name)) != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if memo := strings.TrimSpace(string(tx.Memo)); memo != "" && (name == "" || genericNames[strings.ToUpper(name)]) {
		name = memo
	}

	upper := strings.ToUpper(name)
	for _, prefix := range cardPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = strings.TrimSpace(name[len(prefix):])
			break
		}
	}

	// Leading "MM/DD " date stamps
	if len(name) > 6 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}
	return name
}
