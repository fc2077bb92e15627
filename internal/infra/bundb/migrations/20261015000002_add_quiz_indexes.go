package migrations

import (
	"context"

	"live-quiz-service/internal/infra/bundb"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			// One join per email per quiz; the join flow relies on this to settle races.
			if _, err := db.NewCreateIndex().
				Model((*bundb.ParticipantRow)(nil)).
				Index("participants_quiz_email_uidx").
				Unique().
				Column("quiz_id", "email").
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
			if _, err := db.NewCreateIndex().
				Model((*bundb.QuestionRow)(nil)).
				Index("questions_quiz_position_idx").
				Column("quiz_id", "position").
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
			_, err := db.NewCreateIndex().
				Model((*bundb.ResponseRow)(nil)).
				Index("responses_participant_idx").
				Column("participant_id", "answered_at").
				IfNotExists().
				Exec(ctx)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			for _, name := range []string{
				"responses_participant_idx",
				"questions_quiz_position_idx",
				"participants_quiz_email_uidx",
			} {
				if _, err := db.NewDropIndex().Index(name).IfExists().Exec(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	)
}
