package gradestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jecna-client/pkg/gradestore/db"
	"jecna-client/pkg/jecna"
)

// Store keeps a daily series of subject averages per user and the ids of
// grades that have already been seen.
type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

// Migrate creates the tables if they do not exist yet.
func (s Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, db.Schema)
	return err
}

type SubjectSnapshot struct {
	Subject string
	Average float64
}

type SeenGrade struct {
	Subject string
	GradeID int
}

type PushRequest struct {
	Time       time.Time
	User       string
	SchoolYear jecna.SchoolYear
	Half       jecna.SchoolYearHalf
	Subjects   []SubjectSnapshot
	SeenGrades []SeenGrade
}

// SnapshotFromPage builds a PushRequest out of a fetched grades page,
// subjects without numeric grades only contribute their seen grades.
func SnapshotFromPage(user string, t time.Time, page jecna.GradesPage) PushRequest {
	req := PushRequest{
		Time:       t,
		User:       user,
		SchoolYear: page.SchoolYear(),
		Half:       page.Half(),
	}
	for _, subject := range page.Subjects() {
		avg, err := subject.Grades.Average()
		if err == nil {
			req.Subjects = append(req.Subjects, SubjectSnapshot{
				Subject: subject.Name.Full,
				Average: avg,
			})
		}
		for _, grade := range subject.Grades.All() {
			req.SeenGrades = append(req.SeenGrades, SeenGrade{
				Subject: subject.Name.Full,
				GradeID: grade.ID,
			})
		}
	}
	return req
}

// Push replaces the snapshots the user has for the day of req.Time.
func (s Store) Push(ctx context.Context, req PushRequest) error {
	if req.User == "" {
		return errors.New("push snapshot: user is empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	location := req.Time.Location()
	startOfToday := time.Date(req.Time.Year(), req.Time.Month(), req.Time.Day(), 0, 0, 0, 0, location).Unix()
	startOfTomorrow := time.Date(req.Time.Year(), req.Time.Month(), req.Time.Day()+1, 0, 0, 0, 0, location).Unix()

	err = txqry.DeleteGradeSnapshotsIn(ctx, db.DeleteGradeSnapshotsInParams{
		User:   req.User,
		After:  startOfToday,
		Before: startOfTomorrow,
	})
	if err != nil {
		return fmt.Errorf("delete snapshots of the day: %w", err)
	}

	for _, subject := range req.Subjects {
		err := txqry.CreateUserSubject(ctx, db.CreateUserSubjectParams{
			User:    req.User,
			Subject: subject.Subject,
		})
		if err != nil {
			return err
		}

		userSubjectId, err := txqry.GetUserSubjectId(ctx, db.GetUserSubjectIdParams{
			User:    req.User,
			Subject: subject.Subject,
		})
		if err != nil {
			return err
		}

		err = txqry.CreateGradeSnapshot(ctx, db.CreateGradeSnapshotParams{
			UserSubjectID: userSubjectId,
			SchoolYear:    int64(req.SchoolYear.FirstCalendarYear),
			Half:          int64(req.Half),
			Time:          req.Time.Unix(),
			Value:         subject.Average,
		})
		if err != nil {
			return err
		}
	}

	for _, seen := range req.SeenGrades {
		err := txqry.MarkGradeSeen(ctx, db.MarkGradeSeenParams{
			User:    req.User,
			GradeID: int64(seen.GradeID),
			Subject: seen.Subject,
			SeenAt:  req.Time.Unix(),
		})
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

type GradeSnapshot struct {
	Time       time.Time
	SchoolYear jecna.SchoolYear
	Half       jecna.SchoolYearHalf
	Value      float64
}

type SubjectSnapshotSeries struct {
	Subject   string
	Snapshots []GradeSnapshot
}

// Pull returns the snapshots of every subject of the user ordered by time.
func (s Store) Pull(ctx context.Context, user string) ([]SubjectSnapshotSeries, error) {
	rows, err := s.qry.GetGradeSnapshots(ctx, user)
	if err != nil {
		return nil, err
	}

	var subjects []SubjectSnapshotSeries
	for _, r := range rows {
		if len(subjects) == 0 || subjects[len(subjects)-1].Subject != r.Subject {
			subjects = append(subjects, SubjectSnapshotSeries{Subject: r.Subject})
		}
		current := &subjects[len(subjects)-1]
		current.Snapshots = append(current.Snapshots, GradeSnapshot{
			Time:       time.Unix(r.Time, 0),
			SchoolYear: jecna.NewSchoolYear(int(r.SchoolYear)),
			Half:       jecna.SchoolYearHalf(r.Half),
			Value:      r.Value,
		})
	}
	return subjects, nil
}

type UnseenGrade struct {
	Subject   jecna.Name
	Partition jecna.Partition
	Grade     jecna.Grade
}

// UnseenGrades returns the grades on the page that were never pushed for
// the user, in page order.
func (s Store) UnseenGrades(ctx context.Context, user string, page jecna.GradesPage) ([]UnseenGrade, error) {
	ids, err := s.qry.GetSeenGradeIds(ctx, user)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		seen[int(id)] = struct{}{}
	}

	var unseen []UnseenGrade
	for _, subject := range page.Subjects() {
		for _, partition := range subject.Grades.Partitions() {
			for _, grade := range subject.Grades.ForPartition(partition) {
				if _, ok := seen[grade.ID]; ok {
					continue
				}
				unseen = append(unseen, UnseenGrade{
					Subject:   subject.Name,
					Partition: partition,
					Grade:     grade,
				})
			}
		}
	}
	return unseen, nil
}
