package engine_test

import (
	"testing"
	"time"

	"github.com/okian/haggle/internal/domain/engine"
	"github.com/okian/haggle/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newSession() model.Session {
	return model.NewSession("s-1", "alice", "127.0.0.1", time.Unix(1700000000, 0))
}

// playRound resolves one full round with the given share and decision.
func playRound(e *engine.Engine, s *model.Session, share int, accepted bool) {
	proposer := e.ProposerFor(s.Round)
	if err := e.ApplyProposal(s, proposer, share, ""); err != nil {
		panic(err)
	}
	if err := e.ApplyDecision(s, proposer.Other(), accepted, ""); err != nil {
		panic(err)
	}
}

func TestEngine_ApplyProposal(t *testing.T) {
	Convey("Given a fresh session and the default engine", t, func() {
		e := engine.New()
		s := newSession()

		Convey("When the human proposes 7 in round 1", func() {
			err := e.ApplyProposal(&s, model.ActorHuman, 7, "take it or leave it")

			Convey("Then a proposer event is appended and nothing else moves", func() {
				So(err, ShouldBeNil)
				So(s.Turns, ShouldHaveLength, 1)
				So(s.Turns[0].Role, ShouldEqual, model.RoleProposer)
				So(s.Turns[0].Actor, ShouldEqual, model.ActorHuman)
				So(*s.Turns[0].ProposedShare, ShouldEqual, 7)
				So(s.Round, ShouldEqual, 1)
				So(s.HumanScore, ShouldEqual, 0)
				So(s.AIScore, ShouldEqual, 0)
				So(s.Finished, ShouldBeFalse)
			})

			Convey("And a second proposal in the same round is rejected", func() {
				err := e.ApplyProposal(&s, model.ActorHuman, 5, "")
				So(err, ShouldWrap, engine.ErrTurnOrderViolation)
				So(s.Turns, ShouldHaveLength, 1)
			})
		})

		Convey("When the opponent tries to open round 1", func() {
			err := e.ApplyProposal(&s, model.ActorOpponent, 5, "")

			Convey("Then it is a turn order violation under human_opens", func() {
				So(err, ShouldWrap, engine.ErrTurnOrderViolation)
				So(s.Turns, ShouldBeEmpty)
			})
		})

		Convey("When the share is out of range", func() {
			So(e.ApplyProposal(&s, model.ActorHuman, 11, ""), ShouldWrap, engine.ErrInvalidInput)
			So(e.ApplyProposal(&s, model.ActorHuman, -1, ""), ShouldWrap, engine.ErrInvalidInput)
			So(s.Turns, ShouldBeEmpty)
		})

		Convey("When the note exceeds the limit", func() {
			long := make([]byte, model.MaxNoteLen+1)
			for i := range long {
				long[i] = 'x'
			}
			err := e.ApplyProposal(&s, model.ActorHuman, 5, string(long))
			So(err, ShouldWrap, engine.ErrInvalidInput)
		})

		Convey("When the boundary shares 0 and 10 are proposed", func() {
			So(e.ApplyProposal(&s, model.ActorHuman, 0, ""), ShouldBeNil)
			So(e.ApplyDecision(&s, model.ActorOpponent, true, ""), ShouldBeNil)
			So(e.ApplyProposal(&s, model.ActorOpponent, 10, ""), ShouldBeNil)
			So(e.ApplyDecision(&s, model.ActorHuman, true, ""), ShouldBeNil)

			Convey("Then scores reflect both extremes", func() {
				So(s.HumanScore, ShouldEqual, 10)
				So(s.AIScore, ShouldEqual, 10)
				So(s.Round, ShouldEqual, 3)
			})
		})
	})
}

func TestEngine_ApplyDecision(t *testing.T) {
	Convey("Given a session with a pending human proposal", t, func() {
		e := engine.New()
		s := newSession()
		So(e.ApplyProposal(&s, model.ActorHuman, 7, ""), ShouldBeNil)

		Convey("When the opponent accepts", func() {
			err := e.ApplyDecision(&s, model.ActorOpponent, true, "ok")

			Convey("Then the split is applied and the round advances", func() {
				So(err, ShouldBeNil)
				So(s.HumanScore, ShouldEqual, 7)
				So(s.AIScore, ShouldEqual, 3)
				So(s.Round, ShouldEqual, 2)
				So(s.Finished, ShouldBeFalse)
			})
		})

		Convey("When the opponent rejects", func() {
			err := e.ApplyDecision(&s, model.ActorOpponent, false, "too greedy")

			Convey("Then scores stay and the round still advances", func() {
				So(err, ShouldBeNil)
				So(s.HumanScore, ShouldEqual, 0)
				So(s.AIScore, ShouldEqual, 0)
				So(s.Round, ShouldEqual, 2)
			})
		})

		Convey("When the proposer decides on its own proposal", func() {
			err := e.ApplyDecision(&s, model.ActorHuman, true, "")

			Convey("Then it is rejected", func() {
				So(err, ShouldWrap, engine.ErrNoPendingProposal)
				So(s.HumanScore, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a session with no pending proposal", t, func() {
		e := engine.New()
		s := newSession()

		Convey("When any actor decides", func() {
			err := e.ApplyDecision(&s, model.ActorHuman, true, "")

			Convey("Then there is nothing to decide on", func() {
				So(err, ShouldWrap, engine.ErrNoPendingProposal)
			})
		})
	})
}

func TestEngine_FullGame(t *testing.T) {
	Convey("Given the default engine", t, func() {
		e := engine.New()

		Convey("When six rounds resolve with alternating proposers", func() {
			s := newSession()
			for round := 1; round <= model.TotalRounds; round++ {
				So(s.Round, ShouldEqual, round)
				playRound(e, &s, 6, true)
			}

			Convey("Then the session is finished with the accumulated split", func() {
				So(s.Finished, ShouldBeTrue)
				So(s.Round, ShouldEqual, model.TotalRounds)
				So(s.HumanScore, ShouldEqual, 36)
				So(s.AIScore, ShouldEqual, 24)
				So(s.Turns, ShouldHaveLength, model.TotalRounds*2)
			})

			Convey("And every further action fails with invalid state", func() {
				So(e.ApplyProposal(&s, model.ActorHuman, 5, ""), ShouldWrap, engine.ErrInvalidState)
				So(e.ApplyDecision(&s, model.ActorHuman, true, ""), ShouldWrap, engine.ErrInvalidState)
				So(s.Turns, ShouldHaveLength, model.TotalRounds*2)
			})
		})

		Convey("When every round's proposal is rejected", func() {
			s := newSession()
			for round := 1; round <= model.TotalRounds; round++ {
				playRound(e, &s, 5, false)
			}

			Convey("Then the game finishes scoreless", func() {
				So(s.Finished, ShouldBeTrue)
				So(s.HumanScore, ShouldEqual, 0)
				So(s.AIScore, ShouldEqual, 0)
				So(s.Winner(), ShouldEqual, "tie")
			})
		})

		Convey("When rounds resolve one at a time", func() {
			s := newSession()
			totalBefore := 0
			for round := 1; round <= model.TotalRounds; round++ {
				playRound(e, &s, 4, true)
				total := s.HumanScore + s.AIScore
				So(total-totalBefore, ShouldEqual, model.PointsPerRound)
				totalBefore = total
			}

			Convey("Then each accepted round adds exactly the full pot", func() {
				So(s.HumanScore+s.AIScore, ShouldEqual, model.TotalRounds*model.PointsPerRound)
			})
		})

		Convey("And the per-round event order is always proposer then decider", func() {
			s := newSession()
			for round := 1; round <= model.TotalRounds; round++ {
				playRound(e, &s, 5, round%2 == 0)
			}
			for i, turn := range s.Turns {
				So(turn.Round, ShouldEqual, i/2+1)
				if i%2 == 0 {
					So(turn.Role, ShouldEqual, model.RoleProposer)
					So(turn.ProposedShare, ShouldNotBeNil)
					So(turn.Accepted, ShouldBeNil)
				} else {
					So(turn.Role, ShouldEqual, model.RoleDecider)
					So(turn.Accepted, ShouldNotBeNil)
					So(turn.ProposedShare, ShouldBeNil)
				}
			}
		})
	})
}

func TestEngine_Alternation(t *testing.T) {
	Convey("Given the two alternation policies", t, func() {
		humanOpens := engine.New(engine.WithAlternation(engine.HumanOpens))
		opponentOpens := engine.New(engine.WithAlternation(engine.OpponentOpens))

		Convey("Then proposers alternate by round parity", func() {
			for round := 1; round <= model.TotalRounds; round++ {
				if round%2 == 1 {
					So(humanOpens.ProposerFor(round), ShouldEqual, model.ActorHuman)
					So(opponentOpens.ProposerFor(round), ShouldEqual, model.ActorOpponent)
				} else {
					So(humanOpens.ProposerFor(round), ShouldEqual, model.ActorOpponent)
					So(opponentOpens.ProposerFor(round), ShouldEqual, model.ActorHuman)
				}
			}
		})

		Convey("And under opponent_opens the human cannot open round 1", func() {
			s := newSession()
			err := opponentOpens.ApplyProposal(&s, model.ActorHuman, 5, "")
			So(err, ShouldWrap, engine.ErrTurnOrderViolation)
		})
	})
}

func TestEngine_Phase(t *testing.T) {
	Convey("Given a session moving through one round", t, func() {
		e := engine.New()
		s := newSession()

		So(e.Phase(&s), ShouldEqual, engine.PhaseAwaitingProposal)

		So(e.ApplyProposal(&s, model.ActorHuman, 5, ""), ShouldBeNil)
		So(e.Phase(&s), ShouldEqual, engine.PhaseAwaitingDecision)

		So(e.ApplyDecision(&s, model.ActorOpponent, true, ""), ShouldBeNil)
		So(e.Phase(&s), ShouldEqual, engine.PhaseAwaitingProposal)

		Convey("When the final round resolves", func() {
			for round := 2; round <= model.TotalRounds; round++ {
				playRound(e, &s, 5, true)
			}
			So(e.Phase(&s), ShouldEqual, engine.PhaseFinished)
		})
	})
}
