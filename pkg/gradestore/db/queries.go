package db

import (
	"context"
)

const createUserSubject = `
insert into user_subject(user, subject) values (?, ?)
on conflict (user, subject) do nothing
`

type CreateUserSubjectParams struct {
	User    string
	Subject string
}

func (q *Queries) CreateUserSubject(ctx context.Context, arg CreateUserSubjectParams) error {
	_, err := q.db.ExecContext(ctx, createUserSubject, arg.User, arg.Subject)
	return err
}

const getUserSubjectId = `
select id from user_subject where user = ? and subject = ?
`

type GetUserSubjectIdParams struct {
	User    string
	Subject string
}

func (q *Queries) GetUserSubjectId(ctx context.Context, arg GetUserSubjectIdParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, getUserSubjectId, arg.User, arg.Subject)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const deleteGradeSnapshotsIn = `
delete from grade_snapshot
where user_subject_id in (select id from user_subject where user = ?)
    and time >= ? and time < ?
`

type DeleteGradeSnapshotsInParams struct {
	User   string
	After  int64
	Before int64
}

func (q *Queries) DeleteGradeSnapshotsIn(ctx context.Context, arg DeleteGradeSnapshotsInParams) error {
	_, err := q.db.ExecContext(ctx, deleteGradeSnapshotsIn, arg.User, arg.After, arg.Before)
	return err
}

const createGradeSnapshot = `
insert into grade_snapshot(user_subject_id, school_year, half, time, value)
values (?, ?, ?, ?, ?)
`

type CreateGradeSnapshotParams struct {
	UserSubjectID int64
	SchoolYear    int64
	Half          int64
	Time          int64
	Value         float64
}

func (q *Queries) CreateGradeSnapshot(ctx context.Context, arg CreateGradeSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, createGradeSnapshot,
		arg.UserSubjectID,
		arg.SchoolYear,
		arg.Half,
		arg.Time,
		arg.Value,
	)
	return err
}

const getGradeSnapshots = `
select user_subject.subject, grade_snapshot.school_year, grade_snapshot.half,
    grade_snapshot.time, grade_snapshot.value
from grade_snapshot
inner join user_subject on user_subject.id = grade_snapshot.user_subject_id
where user_subject.user = ?
order by user_subject.subject, grade_snapshot.time
`

type GetGradeSnapshotsRow struct {
	Subject    string
	SchoolYear int64
	Half       int64
	Time       int64
	Value      float64
}

func (q *Queries) GetGradeSnapshots(ctx context.Context, user string) ([]GetGradeSnapshotsRow, error) {
	rows, err := q.db.QueryContext(ctx, getGradeSnapshots, user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetGradeSnapshotsRow
	for rows.Next() {
		var i GetGradeSnapshotsRow
		if err := rows.Scan(
			&i.Subject,
			&i.SchoolYear,
			&i.Half,
			&i.Time,
			&i.Value,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markGradeSeen = `
insert into seen_grade(user, grade_id, subject, seen_at) values (?, ?, ?, ?)
on conflict (user, grade_id) do nothing
`

type MarkGradeSeenParams struct {
	User    string
	GradeID int64
	Subject string
	SeenAt  int64
}

func (q *Queries) MarkGradeSeen(ctx context.Context, arg MarkGradeSeenParams) error {
	_, err := q.db.ExecContext(ctx, markGradeSeen,
		arg.User,
		arg.GradeID,
		arg.Subject,
		arg.SeenAt,
	)
	return err
}

const getSeenGradeIds = `
select grade_id from seen_grade where user = ?
`

func (q *Queries) GetSeenGradeIds(ctx context.Context, user string) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, getSeenGradeIds, user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []int64
	for rows.Next() {
		var gradeId int64
		if err := rows.Scan(&gradeId); err != nil {
			return nil, err
		}
		items = append(items, gradeId)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
