package rank_test

import (
	"testing"
	"time"

	"github.com/okian/haggle/internal/domain/model"
	"github.com/okian/haggle/internal/domain/rank"
	. "github.com/smartystreets/goconvey/convey"
)

func finished(id, name string, human, ai int, created time.Time) model.Session {
	s := model.NewSession(id, name, "", created)
	s.HumanScore = human
	s.AIScore = ai
	s.Finished = true
	return s
}

func TestRank(t *testing.T) {
	base := time.Unix(1700000000, 0)

	Convey("Given a mix of finished and unfinished sessions", t, func() {
		sessions := []model.Session{
			finished("a", "alice", 30, 20, base),
			finished("b", "bob", 40, 10, base.Add(time.Minute)),
			model.NewSession("c", "carol", "", base), // still in progress
			finished("d", "", 50, 0, base),           // anonymous
		}

		Convey("When ranked by score", func() {
			entries := rank.Rank(sessions, rank.ModeScore)

			Convey("Then only finished, named sessions appear, best first", func() {
				So(entries, ShouldHaveLength, 2)
				So(entries[0].SessionID, ShouldEqual, "b")
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].SessionID, ShouldEqual, "a")
				So(entries[1].Rank, ShouldEqual, 2)
			})
		})
	})

	Convey("Given sessions with equal human scores", t, func() {
		sessions := []model.Session{
			finished("a", "alice", 8, 2, base),
			finished("b", "bob", 8, 0, base),
		}

		Convey("When ranked by score", func() {
			entries := rank.Rank(sessions, rank.ModeScore)

			Convey("Then the lower collaborator score breaks the tie", func() {
				So(entries[0].SessionID, ShouldEqual, "b")
				So(entries[1].SessionID, ShouldEqual, "a")
			})
		})

		Convey("When ranked by difference", func() {
			entries := rank.Rank(sessions, rank.ModeDifference)

			Convey("Then the larger margin wins", func() {
				So(entries[0].SessionID, ShouldEqual, "b")
				So(entries[0].Margin, ShouldEqual, 8)
				So(entries[1].Margin, ShouldEqual, 6)
			})
		})
	})

	Convey("Given sessions that tie on every score axis", t, func() {
		sessions := []model.Session{
			finished("b", "bob", 20, 20, base.Add(time.Hour)),
			finished("a", "alice", 20, 20, base),
		}

		Convey("When ranked in either mode", func() {
			byScore := rank.Rank(sessions, rank.ModeScore)
			byDiff := rank.Rank(sessions, rank.ModeDifference)

			Convey("Then the earlier session ranks first", func() {
				So(byScore[0].SessionID, ShouldEqual, "a")
				So(byDiff[0].SessionID, ShouldEqual, "a")
			})
		})
	})

	Convey("Given a difference-mode field where margin beats raw score", t, func() {
		sessions := []model.Session{
			finished("high", "hank", 45, 40, base),
			finished("wide", "wanda", 30, 5, base),
		}

		entries := rank.Rank(sessions, rank.ModeDifference)

		So(entries[0].SessionID, ShouldEqual, "wide")
		So(entries[0].Margin, ShouldEqual, 25)
		So(entries[1].SessionID, ShouldEqual, "high")
	})

	Convey("Given the same sessions in different input orders", t, func() {
		a := finished("a", "alice", 10, 10, base)
		b := finished("b", "bob", 10, 10, base)
		c := finished("c", "carol", 12, 8, base)

		first := rank.Rank([]model.Session{a, b, c}, rank.ModeScore)
		second := rank.Rank([]model.Session{c, b, a}, rank.ModeScore)

		Convey("Then the ranking is identical", func() {
			So(first, ShouldHaveLength, 3)
			for i := range first {
				So(first[i].SessionID, ShouldEqual, second[i].SessionID)
				So(first[i].Rank, ShouldEqual, second[i].Rank)
			}
		})
	})
}

func TestPaginate(t *testing.T) {
	base := time.Unix(1700000000, 0)

	sessions := make([]model.Session, 0, 25)
	for i := 0; i < 25; i++ {
		id := string(rune('a' + i))
		sessions = append(sessions, finished(id, "player-"+id, 60-i, i, base))
	}

	Convey("Given 25 ranked entries and a page size of 10", t, func() {
		entries := rank.Rank(sessions, rank.ModeScore)

		Convey("When the first page is requested", func() {
			page := rank.Paginate(entries, 1, 10)

			So(page.Entries, ShouldHaveLength, 10)
			So(page.Entries[0].Rank, ShouldEqual, 1)
			So(page.PageNumber, ShouldEqual, 1)
			So(page.PageSize, ShouldEqual, 10)
			So(page.TotalEntries, ShouldEqual, 25)
			So(page.TotalPages, ShouldEqual, 3)
		})

		Convey("When the last, partial page is requested", func() {
			page := rank.Paginate(entries, 3, 10)

			So(page.Entries, ShouldHaveLength, 5)
			So(page.Entries[0].Rank, ShouldEqual, 21)
		})

		Convey("When a page past the end is requested", func() {
			page := rank.Paginate(entries, 4, 10)

			So(page.Entries, ShouldBeEmpty)
			So(page.TotalEntries, ShouldEqual, 25)
			So(page.TotalPages, ShouldEqual, 3)
		})
	})

	Convey("Given no entries at all", t, func() {
		page := rank.Paginate(nil, 1, 10)

		So(page.Entries, ShouldBeEmpty)
		So(page.TotalEntries, ShouldEqual, 0)
		So(page.TotalPages, ShouldEqual, 0)
	})
}

func TestMode(t *testing.T) {
	Convey("Given the known and unknown ranking modes", t, func() {
		So(rank.ModeScore.Valid(), ShouldBeTrue)
		So(rank.ModeDifference.Valid(), ShouldBeTrue)
		So(rank.Mode("points").Valid(), ShouldBeFalse)
		So(rank.Mode("").Valid(), ShouldBeFalse)
	})
}
