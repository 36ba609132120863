package app

import (
	"errors"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/ayoisaiah/werk/internal/apperr"
	"github.com/ayoisaiah/werk/internal/config"
	"github.com/ayoisaiah/werk/internal/models"
	"github.com/ayoisaiah/werk/internal/ui"
)

var (
	errDecodeRules = &apperr.Error{
		Message: "reading rules file failed",
	}

	errImportRule = &apperr.Error{
		Message: "rule %d",
	}
)

// ruleFile is the YAML layout used by rules import and export.
type ruleFile struct {
	Rules []models.AssignmentRule `yaml:"rules"`
}

func readRules(r io.Reader) ([]models.AssignmentRule, error) {
	var f ruleFile

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, errDecodeRules.Wrap(err)
	}

	return f.Rules, nil
}

func writeRules(w io.Writer, rs []models.AssignmentRule) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(ruleFile{Rules: rs}); err != nil {
		return err
	}

	return enc.Close()
}

// listRulesAction handles the rules list command.
func listRulesAction(ctx *cli.Context) error {
	e, err := load(ctx)
	if err != nil {
		return err
	}

	defer e.close()

	rs, err := e.db.Rules(ctx.Context)
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		return printJSON(rs)
	}

	if len(rs) == 0 {
		pterm.Info.Println(noRulesMsg)
		return nil
	}

	ui.PrintTable("rule", ruleRows(rs), config.Stdout)

	return nil
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		pterm.Warning.Println(w)
	}
}

// addRuleAction handles the rules add command.
func addRuleAction(ctx *cli.Context) error {
	e, err := load(ctx)
	if err != nil {
		return err
	}

	defer e.close()

	r := models.AssignmentRule{
		Name:                ctx.String("name"),
		UserID:              ctx.String("user"),
		ProcessPattern:      ctx.String("process"),
		TitleContains:       ctx.String("title-contains"),
		TitleRegex:          ctx.String("title-regex"),
		AutoProjectID:       ctx.Uint64("project"),
		AutoMilestoneID:     ctx.Uint64("milestone"),
		AutoActivity:        ctx.String("activity"),
		AutoCommentTemplate: ctx.String("comment"),
		Priority:            ctx.Int("priority"),
		Enabled:             !ctx.Bool("disabled"),
	}

	warnings, err := e.svc.SaveRule(ctx.Context, &r)
	if err != nil {
		return err
	}

	printWarnings(warnings)

	pterm.Success.Printfln("Rule %d (%s) saved", r.ID, r.Name)

	return nil
}

// deleteRuleAction handles the rules delete command. It asks for
// confirmation before proceeding with the operation.
func deleteRuleAction(ctx *cli.Context) error {
	ids, err := parseIDs(ctx)
	if err != nil {
		return err
	}

	e, err := load(ctx)
	if err != nil {
		return err
	}

	defer e.close()

	rs, err := e.db.Rules(ctx.Context)
	if err != nil {
		return err
	}

	selected := make([]models.AssignmentRule, 0, len(ids))

	for i := range rs {
		for _, id := range ids {
			if rs[i].ID == id {
				selected = append(selected, rs[i])
			}
		}
	}

	if len(selected) > 0 {
		ui.PrintTable("rule", ruleRows(selected), config.Stdout)
	}

	err = confirm(ctx, "The selected rules will be deleted permanently. Proceed?")
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := e.db.DeleteRule(ctx.Context, id); err != nil {
			return err
		}
	}

	pterm.Success.Printfln("%d rule(s) deleted", len(ids))

	return nil
}

// importRulesAction handles the rules import command. Every rule is checked
// before any of them is stored.
func importRulesAction(ctx *cli.Context) error {
	in, err := openInput(ctx)
	if err != nil {
		return err
	}

	defer in.Close()

	rs, err := readRules(in)
	if err != nil {
		return err
	}

	e, err := load(ctx)
	if err != nil {
		return err
	}

	defer e.close()

	for i := range rs {
		if _, err := e.svc.CheckRule(&rs[i]); err != nil {
			return errImportRule.Fmt(i + 1).Wrap(err)
		}
	}

	for i := range rs {
		warnings, err := e.svc.SaveRule(ctx.Context, &rs[i])
		if err != nil {
			return errImportRule.Fmt(i + 1).Wrap(err)
		}

		printWarnings(warnings)
	}

	pterm.Success.Printfln("%d rule(s) imported", len(rs))

	return nil
}

// exportRulesAction handles the rules export command.
func exportRulesAction(ctx *cli.Context) error {
	e, err := load(ctx)
	if err != nil {
		return err
	}

	defer e.close()

	rs, err := e.db.Rules(ctx.Context)
	if err != nil {
		return err
	}

	path := ctx.String("output")
	if path == "" || path == "-" {
		return writeRules(config.Stdout, rs)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := writeRules(f, rs); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
