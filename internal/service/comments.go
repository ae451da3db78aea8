package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventum/internal/apperr"
	"eventum/internal/model"
	"eventum/internal/repository"
)

// CommentService maintains the moderated comment forest under each
// event: creation, replies, edits and the cascading delete/restore of
// whole subtrees.
type CommentService struct {
	store repository.Store
	now   Clock
}

// NewCommentService constructs a CommentService. A nil clock defaults
// to time.Now.
func NewCommentService(store repository.Store, now Clock) *CommentService {
	if now == nil {
		now = time.Now
	}
	return &CommentService{store: store, now: now}
}

func validateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperr.Validation("comment text must not be blank")
	}
	if len(text) > maxCommentLen {
		return apperr.Validation(
			"comment text must not exceed %d characters", maxCommentLen)
	}
	return nil
}

// Add creates a root comment under an event.
func (s *CommentService) Add(ctx context.Context, authorID, eventID, text string) (*model.Comment, error) {
	if err := validateCommentText(text); err != nil {
		return nil, err
	}
	if err := ensureUser(ctx, s.store, authorID); err != nil {
		return nil, err
	}
	event, err := s.store.Events().GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.CommentsDisabled {
		return nil, apperr.Conflict("comments are disabled for event %s", eventID)
	}

	comment := s.newComment(authorID, eventID, "", text)
	if err := s.store.Comments().Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Reply creates a child comment under an existing comment of the same
// event. A deleted parent does not block new replies; only restoring is
// guarded by the parent's state.
func (s *CommentService) Reply(ctx context.Context, authorID, eventID, parentID, text string) (*model.Comment, error) {
	if err := validateCommentText(text); err != nil {
		return nil, err
	}
	if err := ensureUser(ctx, s.store, authorID); err != nil {
		return nil, err
	}
	event, err := s.store.Events().GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	parent, err := s.store.Comments().GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.EventID != eventID {
		return nil, apperr.NotFound(
			"parent comment with id=%s was not found under event %s",
			parentID, eventID)
	}
	if event.CommentsDisabled {
		return nil, apperr.Conflict("comments are disabled for event %s", eventID)
	}

	comment := s.newComment(authorID, eventID, parentID, text)
	if err := s.store.Comments().Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) newComment(authorID, eventID, parentID, text string) *model.Comment {
	now := s.now().UTC()
	return &model.Comment{
		ID:           uuid.New().String(),
		EventID:      eventID,
		AuthorID:     authorID,
		ParentID:     parentID,
		Text:         strings.TrimSpace(text),
		CreationDate: now,
		UpdateDate:   now,
	}
}

// Edit replaces a comment's text. Author only; a no-op edit (same text
// after trimming, case-insensitive) is rejected, not silently accepted.
func (s *CommentService) Edit(ctx context.Context, authorID, eventID, commentID, text string) (*model.Comment, error) {
	if err := validateCommentText(text); err != nil {
		return nil, err
	}
	if err := ensureUser(ctx, s.store, authorID); err != nil {
		return nil, err
	}
	if err := ensureEvent(ctx, s.store, eventID); err != nil {
		return nil, err
	}
	comment, err := s.store.Comments().GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != authorID {
		return nil, apperr.Forbidden(
			"user %s is not the author of comment %s", authorID, commentID)
	}
	if comment.EventID != eventID {
		return nil, apperr.Forbidden(
			"comment with id=%s is not for event %s", commentID, eventID)
	}
	if strings.EqualFold(strings.TrimSpace(comment.Text), strings.TrimSpace(text)) {
		return nil, apperr.Conflict("nothing to change")
	}

	comment.Text = strings.TrimSpace(text)
	comment.Edited = true
	comment.UpdateDate = s.now().UTC()
	if err := s.store.Comments().Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// SetStatus soft-deletes or restores a comment together with its
// subtree. Restoring a reply is blocked while its direct parent is
// deleted; once a restore cascade starts it fully restores the invoked
// subtree. The touched subtree persists as one atomic unit.
func (s *CommentService) SetStatus(ctx context.Context, authorID, eventID, commentID string, cmd model.CommentCommand) (*model.Comment, error) {
	var out *model.Comment
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if err := ensureUser(ctx, tx, authorID); err != nil {
			return err
		}
		if err := ensureEvent(ctx, tx, eventID); err != nil {
			return err
		}
		comment, err := tx.Comments().GetByID(ctx, commentID)
		if err != nil {
			return err
		}
		if comment.AuthorID != authorID {
			return apperr.Forbidden(
				"user %s is not the author of comment %s", authorID, commentID)
		}
		if comment.ParentID != "" && cmd == model.CommentRestore {
			parent, err := tx.Comments().GetByID(ctx, comment.ParentID)
			if err != nil {
				return err
			}
			if parent.Deleted {
				return apperr.Conflict(
					"comment with id=%s cannot be restored: it is a reply to a deleted comment",
					commentID)
			}
		}

		var changed []model.Comment
		switch cmd {
		case model.CommentDelete:
			changed, err = s.cascade(ctx, tx, comment, true)
		case model.CommentRestore:
			changed, err = s.cascade(ctx, tx, comment, false)
		default:
			return apperr.Conflict("unknown comment command: %s", cmd)
		}
		if err != nil {
			return err
		}
		if err := tx.Comments().UpdateAll(ctx, changed); err != nil {
			return err
		}

		out = comment
		slog.Info("comment subtree status changed",
			"comment_id", commentID, "command", cmd, "touched", len(changed))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// cascade flips the deleted flag on the comment and every descendant
// that still carries the old value. The walk uses an explicit work list
// over the parent index, keeping depth bounded for arbitrarily long
// threads; subtrees already in the target state are not descended into.
func (s *CommentService) cascade(ctx context.Context, tx repository.Store, root *model.Comment, deleted bool) ([]model.Comment, error) {
	now := s.now().UTC()
	root.Deleted = deleted
	root.UpdateDate = now
	changed := []model.Comment{*root}

	queue := []string{root.ID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		children, err := tx.Comments().ChildrenOf(ctx, id)
		if err != nil {
			return nil, err
		}
		for i := range children {
			if children[i].Deleted == deleted {
				continue
			}
			children[i].Deleted = deleted
			children[i].UpdateDate = now
			changed = append(changed, children[i])
			queue = append(queue, children[i].ID)
		}
	}
	return changed, nil
}

// ListForEvent returns the event's visible comments, newest first.
func (s *CommentService) ListForEvent(ctx context.Context, callerID, eventID string, from, size int) ([]model.Comment, error) {
	if err := ensureUser(ctx, s.store, callerID); err != nil {
		return nil, err
	}
	if err := ensureEvent(ctx, s.store, eventID); err != nil {
		return nil, err
	}
	from, size = normalizePage(from, size)
	return s.store.Comments().ListByEvent(ctx, eventID, from, size)
}

// ListByAuthor returns the user's comments across events, filtered by
// visibility scope.
func (s *CommentService) ListByAuthor(ctx context.Context, userID string, scope model.CommentScope, from, size int) ([]model.Comment, error) {
	if err := ensureUser(ctx, s.store, userID); err != nil {
		return nil, err
	}
	switch scope {
	case model.ShowAll, model.ShowActive, model.ShowDeleted:
	case "":
		scope = model.ShowAll
	default:
		return nil, apperr.Validation("unknown comment scope: %s", scope)
	}
	from, size = normalizePage(from, size)
	return s.store.Comments().ListByAuthor(ctx, userID, scope, from, size)
}

// ToggleSetting enables or disables commenting on an event. Initiator
// only; requesting the state that already holds fails Conflict.
func (s *CommentService) ToggleSetting(ctx context.Context, callerID, eventID string, cmd model.CommentsSetting) (*model.Event, error) {
	if err := ensureUser(ctx, s.store, callerID); err != nil {
		return nil, err
	}
	event, err := s.store.Events().GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.InitiatorID != callerID {
		return nil, apperr.Forbidden(
			"user with id=%s is not allowed to update comment settings", callerID)
	}

	switch cmd {
	case model.DisableComments:
		if event.CommentsDisabled {
			return nil, apperr.Conflict("comments are already disabled")
		}
		event.CommentsDisabled = true
	case model.EnableComments:
		if !event.CommentsDisabled {
			return nil, apperr.Conflict("comments are already enabled")
		}
		event.CommentsDisabled = false
	default:
		return nil, apperr.Conflict("unknown comments setting: %s", cmd)
	}

	if err := s.store.Events().Update(ctx, event); err != nil {
		return nil, err
	}
	slog.Info("comments setting updated",
		"event_id", eventID, "disabled", event.CommentsDisabled)
	return event, nil
}
