package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
	"github.com/AdamBeresnev/spread-pool/internal/events"
	"github.com/AdamBeresnev/spread-pool/internal/export"
	"github.com/AdamBeresnev/spread-pool/internal/importer"
	"github.com/AdamBeresnev/spread-pool/internal/service"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply database migrations",
		Action: withEnv(func(c *cli.Context, e *env) error {
			fmt.Fprintf(c.App.Writer, "Database %s is migrated\n", e.cfg.Database.Path)
			return nil
		}),
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:      "seed",
		Usage:     "load a 64-team field from a CSV or XLSX file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "replace", Usage: "discard an existing field for the year"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			if c.NArg() != 1 {
				return cli.Exit("seed needs exactly one FILE", 2)
			}
			seeds, err := importer.ReadFile(c.Args().First())
			if err != nil {
				return err
			}
			res, err := service.NewSeedService(e.db, e.stores).SeedYear(c.Context, e.cfg.Pool.Year, seeds, c.Bool("replace"))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Seeded %d: %d teams, %d games\n", res.Year, res.Teams, res.Games)
			return nil
		}),
	}
}

func participantsCommand() *cli.Command {
	return &cli.Command{
		Name:  "participants",
		Usage: "manage pool participants",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "add a participant",
				ArgsUsage: "NAME",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "email"}},
				Action: withEnv(func(c *cli.Context, e *env) error {
					if c.NArg() != 1 {
						return cli.Exit("participants add needs a NAME", 2)
					}
					p, err := service.NewParticipantService(e.db, e.stores).Create(c.Context, c.Args().First(), c.String("email"))
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%s\t%s\n", p.ID, p.Name)
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "list participants",
				Action: withEnv(func(c *cli.Context, e *env) error {
					people, err := service.NewParticipantService(e.db, e.stores).List(c.Context)
					if err != nil {
						return err
					}
					for _, p := range people {
						fmt.Fprintf(c.App.Writer, "%s\t%s\n", p.ID, p.Name)
					}
					return nil
				}),
			},
			{
				Name:  "demo",
				Usage: "create fake participants",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "count", Value: service.PoolSize},
					&cli.Uint64Flag{Name: "seed"},
				},
				Action: withEnv(func(c *cli.Context, e *env) error {
					people, err := service.NewParticipantService(e.db, e.stores).
						CreateDemo(c.Context, c.Int("count"), gofakeit.New(c.Uint64("seed")))
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Created %d participants\n", len(people))
					return nil
				}),
			},
		},
	}
}

func draftCommand() *cli.Command {
	return &cli.Command{
		Name:  "draft",
		Usage: "deal the field to the participants, one team per region each",
		Flags: []cli.Flag{&cli.Uint64Flag{Name: "seed", Usage: "random seed for a reproducible draft"}},
		Action: withEnv(func(c *cli.Context, e *env) error {
			picks, err := service.NewDraftService(e.db, e.stores).RandomDraft(c.Context, e.cfg.Pool.Year, gofakeit.New(c.Uint64("seed")))
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			for _, p := range picks {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.Participant.Name, p.Team.Region, p.Team.Seed, p.Team.Name)
			}
			return w.Flush()
		}),
		Subcommands: []*cli.Command{
			{
				Name:      "assign",
				Usage:     "hand one undrafted team to a participant",
				ArgsUsage: "TEAM_ID PARTICIPANT_ID",
				Action: withEnv(func(c *cli.Context, e *env) error {
					teamID, err := uuidArg(c, 0, "TEAM_ID")
					if err != nil {
						return err
					}
					participantID, err := uuidArg(c, 1, "PARTICIPANT_ID")
					if err != nil {
						return err
					}
					team, err := service.NewDraftService(e.db, e.stores).Assign(c.Context, teamID, participantID)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%s drafted\n", team.Name)
					return nil
				}),
			},
		},
	}
}

func finalizeCommand() *cli.Command {
	return &cli.Command{
		Name:      "finalize",
		Usage:     "record a final score",
		ArgsUsage: "GAME_ID",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "a", Required: true, Usage: "slot a score"},
			&cli.IntFlag{Name: "b", Required: true, Usage: "slot b score"},
			&cli.Float64Flag{Name: "spread", Usage: "points slot a is favored by; the stored line when omitted"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			gameID, err := uuidArg(c, 0, "GAME_ID")
			if err != nil {
				return err
			}
			in := bracket.FinalizeInput{ScoreA: c.Int("a"), ScoreB: c.Int("b")}
			if c.IsSet("spread") {
				spread := c.Float64("spread")
				in.Spread = &spread
			}
			res, err := e.progression.Finalize(c.Context, gameID, in)
			if err != nil {
				return err
			}
			printResult(c, res)
			return nil
		}),
	}
}

func spreadCommand() *cli.Command {
	return &cli.Command{
		Name:      "spread",
		Usage:     "set or clear the pre-game line",
		ArgsUsage: "GAME_ID [SPREAD]",
		Action: withEnv(func(c *cli.Context, e *env) error {
			gameID, err := uuidArg(c, 0, "GAME_ID")
			if err != nil {
				return err
			}
			var spread *float64
			if c.NArg() > 1 {
				v, err := strconv.ParseFloat(c.Args().Get(1), 64)
				if err != nil {
					return bracket.Invalid("spread", fmt.Sprintf("%q is not a number", c.Args().Get(1)))
				}
				spread = &v
			}
			game, err := e.progression.SetSpread(c.Context, gameID, spread)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "%s: %s\n", game.Label(), formatSpread(game.Spread))
			return nil
		}),
	}
}

func correctCommand() *cli.Command {
	return &cli.Command{
		Name:      "correct",
		Usage:     "move a team to another owner with an audited correction",
		ArgsUsage: "TEAM_ID OWNER_ID",
		Flags:     []cli.Flag{&cli.StringFlag{Name: "note", Required: true}},
		Action: withEnv(func(c *cli.Context, e *env) error {
			teamID, err := uuidArg(c, 0, "TEAM_ID")
			if err != nil {
				return err
			}
			ownerID, err := uuidArg(c, 1, "OWNER_ID")
			if err != nil {
				return err
			}
			entry, err := service.NewOwnershipService(e.db, e.stores, events.Discard{}).Correct(c.Context, teamID, ownerID, c.String("note"))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Correction %d recorded\n", entry.Seq)
			return nil
		}),
	}
}

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "play games with simulated scores",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "game", Usage: "play one game"},
			&cli.IntFlag{Name: "round", Usage: "play every open game of a round (64, 32, 16, 8, 4, 2)"},
			&cli.Uint64Flag{Name: "seed", Usage: "random seed for reproducible results"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			sim := service.NewSimulationService(e.progression, e.stores, e.simulator(c))

			switch {
			case c.IsSet("game"):
				id, err := uuid.Parse(c.String("game"))
				if err != nil {
					return bracket.Invalid("game", "must be a UUID")
				}
				res, err := sim.SimulateGame(c.Context, id)
				if err != nil {
					return err
				}
				printResult(c, res)
			case c.IsSet("round"):
				round, err := bracket.ParseRound(strconv.Itoa(c.Int("round")))
				if err != nil {
					return err
				}
				results, err := sim.SimulateRound(c.Context, e.cfg.Pool.Year, round)
				for i := range results {
					printResult(c, &results[i])
				}
				return err
			default:
				results, err := sim.SimulateTournament(c.Context, e.cfg.Pool.Year)
				for i := range results {
					printResult(c, &results[i])
				}
				return err
			}
			return nil
		}),
	}
}

func standingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "standings",
		Usage: "print who owns what",
		Action: withEnv(func(c *cli.Context, e *env) error {
			standings, err := e.query.Standings(c.Context, e.cfg.Pool.Year)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tParticipant\tDrafted\tOwned\tAlive\t")
			for i, st := range standings {
				name := st.Participant.Name
				if st.Champion {
					name += " (champion)"
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t\n", i+1, name, st.InitialTeams, st.Owned, st.Alive)
			}
			return w.Flush()
		}),
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write the bracket and standings to an Excel workbook",
		Flags: []cli.Flag{&cli.StringFlag{Name: "out", Value: "bracket.xlsx"}},
		Action: withEnv(func(c *cli.Context, e *env) error {
			data, err := e.query.Bracket(c.Context, e.cfg.Pool.Year)
			if err != nil {
				return err
			}
			standings, err := e.query.Standings(c.Context, e.cfg.Pool.Year)
			if err != nil {
				return err
			}

			f, err := os.Create(c.String("out"))
			if err != nil {
				return err
			}
			if err := export.Write(f, data, standings); err != nil {
				f.Close()
				return fmt.Errorf("export workbook: %w", err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Wrote %s\n", c.String("out"))
			return nil
		}),
	}
}

func uuidArg(c *cli.Context, i int, name string) (uuid.UUID, error) {
	if c.NArg() <= i {
		return uuid.Nil, cli.Exit(fmt.Sprintf("missing %s", name), 2)
	}
	id, err := uuid.Parse(c.Args().Get(i))
	if err != nil {
		return uuid.Nil, bracket.Invalid(name, "must be a UUID")
	}
	return id, nil
}

func printResult(c *cli.Context, res *bracket.FinalizeResult) {
	fmt.Fprintf(c.App.Writer, "%s R%d %d-%d line %s: team %s advances, owner %s (slot %s)\n",
		res.GameID, res.Round, res.ScoreA, res.ScoreB, formatSpread(res.Spread),
		res.TeamWinnerID, res.OwnerWinnerID, res.CoveringSlot)
	for _, w := range res.Warnings {
		fmt.Fprintf(c.App.Writer, "  warning: %s\n", w)
	}
}

func formatSpread(spread *float64) string {
	if spread == nil {
		return "none"
	}
	return strconv.FormatFloat(*spread, 'f', -1, 64)
}
