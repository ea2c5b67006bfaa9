package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Joeboy77/drug-guard-fe/drugguard"
	"github.com/Joeboy77/drug-guard-fe/internal/dashboard"
	"github.com/Joeboy77/drug-guard-fe/internal/language"
	"github.com/Joeboy77/drug-guard-fe/internal/scanhistory"
	"github.com/Joeboy77/drug-guard-fe/logger"
	"github.com/Joeboy77/drug-guard-fe/session"
	"github.com/urfave/cli/v2"
)

func parseID(c *cli.Context) (int64, error) {
	if c.NArg() != 1 {
		return 0, errors.New("expected exactly one id")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", c.Args().First())
	}

	return id, nil
}

func pageFlags(defaultSize int) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "page", Usage: "zero-based page number"},
		&cli.IntFlag{Name: "size", Usage: "page size", Value: defaultSize},
	}
}

func (a *app) loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "sign in as FDA staff and store the session token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"DRUGGUARD_PASSWORD"}},
		},
		Action: a.command("login", func(ctx context.Context, e *env, c *cli.Context) error {
			resp, err := e.client.Login(ctx, drugguard.LoginRequest{
				Username: c.String("username"),
				Password: c.String("password"),
			})
			if err != nil {
				return err
			}
			if e.out.JSONMode() {
				resp.Token = ""
				return e.out.JSON(resp)
			}

			return e.out.Message(fmt.Sprintf("Signed in as %s (%s, %s)", resp.FullName, resp.StaffID, resp.Department))
		}),
	}
}

func (a *app) logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "sign out and remove the stored session token",
		Action: a.command("logout", func(ctx context.Context, e *env, _ *cli.Context) error {
			e.client.Logout(ctx)
			return e.out.Message("Signed out.")
		}),
	}
}

func (a *app) whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the signed-in staff member",
		Action: a.command("whoami", func(ctx context.Context, e *env, _ *cli.Context) error {
			claims, err := e.client.Session.Claims(ctx)
			if errors.Is(err, session.ErrNoToken) {
				return e.out.Message("Not signed in.")
			}
			if err != nil {
				logger.DebugContext(ctx, "Stored token is not a readable JWT", slog.Any("error", err))
			}

			profile, err := e.client.ValidateToken(ctx)
			if drugguard.IsTokenExpired(err) {
				return e.out.Message("Session expired. Sign in again.")
			}
			if err != nil {
				return err
			}
			if e.out.JSONMode() {
				profile.Token = ""
				return e.out.JSON(profile)
			}

			msg := fmt.Sprintf("%s <%s>, %s in %s", profile.FullName, profile.Email, profile.Position, profile.Department)
			if claims != nil && !claims.ExpiresAt.IsZero() {
				msg += fmt.Sprintf("\nSession expires %s", claims.ExpiresAt.Format("2006-01-02 15:04"))
			}

			return e.out.Message(msg)
		}),
	}
}

func (a *app) verifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "check the authenticity of scanned QR codes",
		ArgsUsage: "qr-code [qr-code...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "location", Usage: "where the scan took place"},
		},
		Action: a.command("verify", func(ctx context.Context, e *env, c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("no QR code specified")
			}

			history := scanhistory.New(scanhistory.DefaultLimit)
			var errs []error
			for _, code := range c.Args().Slice() {
				res, err := scanhistory.Verify(ctx, e.client, history, code, c.String("location"))
				if err != nil {
					logger.WarnContext(ctx, "Verification failed", slog.String("qr_code", code), slog.String("error", drugguard.ErrorMessage(err)))
					errs = append(errs, fmt.Errorf("%s: %w", code, err))

					continue
				}
				if c.NArg() == 1 {
					if err := e.out.Verification(res); err != nil {
						return err
					}
				}
			}
			if c.NArg() > 1 {
				if err := e.out.ScanHistory(history.Entries()); err != nil {
					return err
				}
			}

			return errors.Join(errs...)
		}),
	}
}

func (a *app) searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "search the public drug registry",
		ArgsUsage: "query",
		Flags:     pageFlags(drugguard.DefaultPageSize),
		Action: a.command("search", func(ctx context.Context, e *env, c *cli.Context) error {
			query := strings.Join(c.Args().Slice(), " ")
			if query == "" {
				return errors.New("no search query specified")
			}
			page, err := e.client.SearchPublicDrugs(ctx, query, c.Int("page"), c.Int("size"))
			if err != nil {
				return err
			}

			return e.out.DrugPage(page)
		}),
	}
}

func (a *app) reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "report a suspicious drug",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "drug", Usage: "drug name", Required: true},
			&cli.StringFlag{Name: "manufacturer", Required: true},
			&cli.StringFlag{Name: "issue", Usage: "issue type, e.g. COUNTERFEIT", Required: true},
			&cli.StringFlag{Name: "description", Required: true},
			&cli.StringFlag{Name: "severity", Value: string(drugguard.SeverityMedium)},
			&cli.StringFlag{Name: "batch"},
			&cli.StringFlag{Name: "registration"},
			&cli.StringFlag{Name: "location"},
			&cli.StringFlag{Name: "contact"},
		},
		Action: a.command("report", func(ctx context.Context, e *env, c *cli.Context) error {
			report, err := e.client.CreateDrugReport(ctx, &drugguard.CreateDrugReportRequest{
				DrugName:           c.String("drug"),
				Manufacturer:       c.String("manufacturer"),
				BatchNumber:        c.String("batch"),
				RegistrationNumber: c.String("registration"),
				Description:        c.String("description"),
				IssueType:          c.String("issue"),
				Location:           c.String("location"),
				ContactInfo:        c.String("contact"),
				Severity:           drugguard.Severity(strings.ToUpper(c.String("severity"))),
			})
			if err != nil {
				return err
			}

			return e.out.Report(report)
		}),
	}
}

func (a *app) reportsCommand() *cli.Command {
	return &cli.Command{
		Name:  "reports",
		Usage: "browse and review drug reports",
		Subcommands: []*cli.Command{
			{
				Name:  "recent",
				Usage: "show the latest public reports",
				Action: a.command("reports.recent", func(ctx context.Context, e *env, _ *cli.Context) error {
					reports, err := e.client.RecentReports(ctx)
					if err != nil {
						return err
					}

					return e.out.Reports(reports)
				}),
			},
			{
				Name:  "pending",
				Usage: "show reports awaiting review",
				Action: a.command("reports.pending", func(ctx context.Context, e *env, _ *cli.Context) error {
					reports, err := e.client.PendingReports(ctx)
					if err != nil {
						return err
					}

					return e.out.Reports(reports)
				}),
			},
			{
				Name:      "status",
				Usage:     "move a report to a new review status",
				ArgsUsage: "id",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Usage: "UNDER_REVIEW, RESOLVED or DISMISSED", Required: true},
					&cli.StringFlag{Name: "notes", Usage: "admin notes"},
				},
				Action: a.command("reports.status", func(ctx context.Context, e *env, c *cli.Context) error {
					id, err := parseID(c)
					if err != nil {
						return err
					}
					status := drugguard.ReportStatus(strings.ToUpper(c.String("to")))
					report, err := e.client.UpdateReportStatus(ctx, id, status, c.String("notes"))
					if err != nil {
						return err
					}

					return e.out.Report(report)
				}),
			},
		},
	}
}

// drugFieldFlags are the editable drug fields. Create requires the fields
// the registry cannot do without.
func drugFieldFlags(create bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Required: create},
		&cli.StringFlag{Name: "manufacturer", Required: create},
		&cli.StringFlag{Name: "batch", Usage: "batch number", Required: create},
		&cli.StringFlag{Name: "expiry", Usage: "expiry date, YYYY-MM-DD", Required: create},
		&cli.StringFlag{Name: "registration", Usage: "FDA registration number"},
		&cli.StringFlag{Name: "ingredient", Usage: "active ingredient"},
		&cli.StringFlag{Name: "strength", Usage: "e.g. 500mg"},
		&cli.StringFlag{Name: "form", Usage: "dosage form, e.g. Tablet"},
		&cli.StringFlag{Name: "category"},
		&cli.StringFlag{Name: "manufactured", Usage: "manufacture date, YYYY-MM-DD"},
		&cli.StringFlag{Name: "description"},
		&cli.StringFlag{Name: "storage", Usage: "storage instructions"},
		&cli.StringFlag{Name: "instructions", Usage: "usage instructions"},
	}
}

func createDrugRequest(c *cli.Context) *drugguard.CreateDrugRequest {
	return &drugguard.CreateDrugRequest{
		Name:                c.String("name"),
		Manufacturer:        c.String("manufacturer"),
		BatchNumber:         c.String("batch"),
		ExpiryDate:          c.String("expiry"),
		RegistrationNumber:  c.String("registration"),
		ActiveIngredient:    c.String("ingredient"),
		Strength:            c.String("strength"),
		DosageForm:          c.String("form"),
		Category:            c.String("category"),
		ManufactureDate:     c.String("manufactured"),
		Description:         c.String("description"),
		StorageInstructions: c.String("storage"),
		UsageInstructions:   c.String("instructions"),
	}
}

// updateDrugRequest carries only the flags given on the command line.
func updateDrugRequest(c *cli.Context) (*drugguard.UpdateDrugRequest, error) {
	var u drugguard.UpdateDrugRequest
	fields := map[string]**string{
		"name":         &u.Name,
		"manufacturer": &u.Manufacturer,
		"batch":        &u.BatchNumber,
		"expiry":       &u.ExpiryDate,
		"registration": &u.RegistrationNumber,
		"ingredient":   &u.ActiveIngredient,
		"strength":     &u.Strength,
		"form":         &u.DosageForm,
		"category":     &u.Category,
		"manufactured": &u.ManufactureDate,
		"description":  &u.Description,
		"storage":      &u.StorageInstructions,
		"instructions": &u.UsageInstructions,
	}
	changed := false
	for flag, field := range fields {
		if c.IsSet(flag) {
			v := c.String(flag)
			*field = &v
			changed = true
		}
	}
	if !changed {
		return nil, errors.New("no fields to update")
	}

	return &u, nil
}

func (a *app) drugsCommand() *cli.Command {
	return &cli.Command{
		Name:  "drugs",
		Usage: "manage the drug registry",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list registered drugs",
				Flags: append(pageFlags(drugguard.DefaultPageSize),
					&cli.StringFlag{Name: "sort-by", Value: "name"},
					&cli.StringFlag{Name: "sort-direction", Value: "asc"},
				),
				Action: a.command("drugs.list", func(ctx context.Context, e *env, c *cli.Context) error {
					page, err := e.client.ListDrugs(ctx, drugguard.ListOptions{
						Page:          c.Int("page"),
						Size:          c.Int("size"),
						SortBy:        c.String("sort-by"),
						SortDirection: c.String("sort-direction"),
					})
					if err != nil {
						return err
					}

					return e.out.DrugPage(page)
				}),
			},
			{
				Name:      "get",
				Usage:     "show one drug",
				ArgsUsage: "id",
				Action: a.command("drugs.get", func(ctx context.Context, e *env, c *cli.Context) error {
					id, err := parseID(c)
					if err != nil {
						return err
					}
					drug, err := e.client.GetDrug(ctx, id)
					if err != nil {
						return err
					}

					return e.out.Drug(drug)
				}),
			},
			{
				Name:  "create",
				Usage: "register a new drug",
				Flags: drugFieldFlags(true),
				Action: a.command("drugs.create", func(ctx context.Context, e *env, c *cli.Context) error {
					drug, err := e.client.CreateDrug(ctx, createDrugRequest(c))
					if err != nil {
						return err
					}

					return e.out.Drug(drug)
				}),
			},
			{
				Name:      "update",
				Usage:     "change fields of a registered drug",
				ArgsUsage: "id",
				Flags:     drugFieldFlags(false),
				Action: a.command("drugs.update", func(ctx context.Context, e *env, c *cli.Context) error {
					id, err := parseID(c)
					if err != nil {
						return err
					}
					update, err := updateDrugRequest(c)
					if err != nil {
						return err
					}
					drug, err := e.client.UpdateDrug(ctx, id, update)
					if err != nil {
						return err
					}

					return e.out.Drug(drug)
				}),
			},
			{
				Name:      "delete",
				Usage:     "remove a drug from the registry",
				ArgsUsage: "id",
				Action: a.command("drugs.delete", func(ctx context.Context, e *env, c *cli.Context) error {
					id, err := parseID(c)
					if err != nil {
						return err
					}
					if err := e.client.DeleteDrug(ctx, id); err != nil {
						return err
					}

					return e.out.Message(fmt.Sprintf("Deleted drug #%d.", id))
				}),
			},
			{
				Name:  "expiring",
				Usage: "list drugs expiring soon",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "days", Value: drugguard.DefaultExpiryWindowDays},
				},
				Action: a.command("drugs.expiring", func(ctx context.Context, e *env, c *cli.Context) error {
					drugs, err := e.client.DrugsExpiringSoon(ctx, c.Int("days"))
					if err != nil {
						return err
					}

					return e.out.Drugs(drugs)
				}),
			},
			{
				Name:      "qr",
				Usage:     "generate the QR code of a drug",
				ArgsUsage: "id",
				Action: a.command("drugs.qr", func(ctx context.Context, e *env, c *cli.Context) error {
					id, err := parseID(c)
					if err != nil {
						return err
					}
					qr, err := e.client.GenerateQRCode(ctx, id)
					if err != nil {
						return err
					}
					if e.out.JSONMode() {
						return e.out.JSON(qr)
					}

					return e.out.Message(fmt.Sprintf("QR code %s\nImage: %s", qr.QRCodeData, qr.QRCodeImageURL))
				}),
			},
		},
	}
}

func (a *app) analyticsCommand() *cli.Command {
	return &cli.Command{
		Name:  "analytics",
		Usage: "show the analytics dashboard",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "days", Usage: "scan analytics window", Value: drugguard.DefaultExpiryWindowDays},
		},
		Action: a.command("analytics", func(ctx context.Context, e *env, c *cli.Context) error {
			return e.out.Analytics(dashboard.LoadAnalytics(ctx, e.client, c.Int("days")))
		}),
	}
}

func (a *app) adminCommand() *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "staff dashboard",
		Subcommands: []*cli.Command{
			{
				Name:  "summary",
				Usage: "registry and scan statistics with drugs expiring this month",
				Action: a.command("admin.summary", func(ctx context.Context, e *env, _ *cli.Context) error {
					summary, err := dashboard.LoadAdminSummary(ctx, e.client)
					if err != nil {
						return err
					}

					return e.out.AdminSummary(summary)
				}),
			},
		},
	}
}

func (a *app) voiceCommand() *cli.Command {
	return &cli.Command{
		Name:  "voice",
		Usage: "voice service utilities",
		Subcommands: []*cli.Command{
			{
				Name:  "languages",
				Usage: "list supported languages",
				Action: a.command("voice.languages", func(ctx context.Context, e *env, _ *cli.Context) error {
					langs, err := e.client.AvailableLanguages(ctx)
					if drugguard.IsNetworkError(err) {
						logger.WarnContext(ctx, "Voice service unreachable, listing built-in languages", slog.String("error", drugguard.ErrorMessage(err)))
						langs, err = localLanguages(), nil
					}
					if err != nil {
						return err
					}

					return e.out.Languages(langs)
				}),
			},
			{
				Name:      "detect",
				Usage:     "detect the language of a phrase",
				ArgsUsage: "text",
				Action: a.command("voice.detect", func(ctx context.Context, e *env, c *cli.Context) error {
					text := strings.Join(c.Args().Slice(), " ")
					if text == "" {
						return errors.New("no text specified")
					}
					code, err := e.client.DetectLanguage(ctx, text)
					if drugguard.IsNetworkError(err) {
						logger.WarnContext(ctx, "Voice service unreachable, detecting locally", slog.String("error", drugguard.ErrorMessage(err)))
						code, err = string(language.Detect(text)), nil
					}
					if err != nil {
						return err
					}

					return e.out.Message(code)
				}),
			},
			{
				Name:  "phrases",
				Usage: "list sample voice-search phrases",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "language", Aliases: []string{"l"}, Usage: "en, twi, ga or ewe", Value: string(language.English)},
				},
				Action: a.command("voice.phrases", func(ctx context.Context, e *env, c *cli.Context) error {
					lang, err := language.Parse(c.String("language"))
					if err != nil {
						return err
					}
					phrases, err := e.client.DrugPhrases(ctx, string(lang))
					if drugguard.IsNetworkError(err) {
						logger.WarnContext(ctx, "Voice service unreachable, listing built-in phrases", slog.String("error", drugguard.ErrorMessage(err)))
						phrases, err = language.Phrases(lang), nil
					}
					if err != nil {
						return err
					}

					return e.out.Lines(phrases)
				}),
			},
			{
				Name:  "health",
				Usage: "check the voice service",
				Action: a.command("voice.health", func(ctx context.Context, e *env, _ *cli.Context) error {
					health, err := e.client.VoiceHealth(ctx)
					if err != nil {
						return err
					}

					return e.out.Message(health.Status)
				}),
			},
		},
	}
}

func localLanguages() []drugguard.LanguageInfo {
	all := language.All()
	out := make([]drugguard.LanguageInfo, len(all))
	for i, l := range all {
		out[i] = drugguard.LanguageInfo{Code: string(l.Code), Name: l.Name}
	}

	return out
}
