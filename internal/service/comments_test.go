package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"eventum/internal/apperr"
	"eventum/internal/model"
)

func TestAddComment(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	guest := f.user(t, "guest")
	e := f.publishedEvent(t, owner, 0, true)

	c, err := f.comments.Add(context.Background(), guest, e.ID, "  great lineup  ")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if c.Text != "great lineup" {
		t.Errorf("text = %q, want trimmed", c.Text)
	}
	if c.Deleted || c.Edited {
		t.Error("fresh comment must be visible and unedited")
	}
	if c.ParentID != "" {
		t.Errorf("parent = %q, want root", c.ParentID)
	}
}

func TestAddCommentValidation(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	guest := f.user(t, "guest")
	e := f.publishedEvent(t, owner, 0, true)

	if _, err := f.comments.Add(context.Background(), guest, e.ID, "   "); err == nil {
		t.Error("blank text accepted")
	} else {
		wantKind(t, err, apperr.KindValidation)
	}

	long := strings.Repeat("x", 1001)
	_, err := f.comments.Add(context.Background(), guest, e.ID, long)
	wantKind(t, err, apperr.KindValidation)
}

func TestAddCommentWhenDisabled(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	guest := f.user(t, "guest")
	e := f.publishedEvent(t, owner, 0, true)

	if _, err := f.comments.ToggleSetting(context.Background(), owner, e.ID, model.DisableComments); err != nil {
		t.Fatalf("disable: %v", err)
	}
	_, err := f.comments.Add(context.Background(), guest, e.ID, "too late")
	wantKind(t, err, apperr.KindConflict)
}

func TestReply(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	guest := f.user(t, "guest")
	e := f.publishedEvent(t, owner, 0, true)

	root, err := f.comments.Add(context.Background(), guest, e.ID, "root")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	reply, err := f.comments.Reply(context.Background(), owner, e.ID, root.ID, "thanks")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if reply.ParentID != root.ID {
		t.Errorf("parent = %q, want %q", reply.ParentID, root.ID)
	}
}

func TestReplyUnderDeletedParentAllowed(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	guest := f.user(t, "guest")
	e := f.publishedEvent(t, owner, 0, true)

	root, err := f.comments.Add(context.Background(), guest, e.ID, "root")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := f.comments.SetStatus(context.Background(), guest, e.ID, root.ID, model.CommentDelete); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// The thread stays open even when its head is hidden.
	if _, err := f.comments.Reply(context.Background(), owner, e.ID, root.ID, "still here"); err != nil {
		t.Fatalf("reply under deleted parent: %v", err)
	}
}

func TestReplyToForeignEventParent(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	guest := f.user(t, "guest")
	e1 := f.publishedEvent(t, owner, 0, true)
	e2 := f.publishedEvent(t, owner, 0, true)

	root, err := f.comments.Add(context.Background(), guest, e1.ID, "root")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err = f.comments.Reply(context.Background(), guest, e2.ID, root.ID, "misfiled")
	wantKind(t, err, apperr.KindNotFound)
}

func TestEditComment(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	guest := f.user(t, "guest")
	e := f.publishedEvent(t, owner, 0, true)

	c, err := f.comments.Add(context.Background(), guest, e.ID, "frist")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	edited, err := f.comments.Edit(context.Background(), guest, e.ID, c.ID, "first")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Text != "first" {
		t.Errorf("text = %q, want %q", edited.Text, "first")
	}
	if !edited.Edited {
		t.Error("edited flag not set")
	}
	if !edited.UpdateDate.After(c.CreationDate) {
		t.Error("update date not advanced")
	}
}

func TestEditCommentNoop(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	guest := f.user(t, "guest")
	e := f.publishedEvent(t, owner, 0, true)

	c, err := f.comments.Add(context.Background(), guest, e.ID, "Nice Venue")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	// Same text modulo whitespace and case is a redundant write.
	_, err = f.comments.Edit(context.Background(), guest, e.ID, c.ID, "  nice venue ")
	wantKind(t, err, apperr.KindConflict)

	got, err := f.store.Comments().GetByID(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Edited {
		t.Error("rejected edit must not mark the comment edited")
	}
}

func TestEditCommentForbidden(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	guest := f.user(t, "guest")
	e := f.publishedEvent(t, owner, 0, true)

	c, err := f.comments.Add(context.Background(), guest, e.ID, "mine")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err = f.comments.Edit(context.Background(), owner, e.ID, c.ID, "rewritten")
	wantKind(t, err, apperr.KindForbidden)
}

// thread builds root -> child -> grandchild, all by the same author.
func thread(t *testing.T, f *fixture, author, eventID string) (root, child, grandchild *model.Comment) {
	t.Helper()
	var err error
	root, err = f.comments.Add(context.Background(), author, eventID, "root")
	if err != nil {
		t.Fatalf("add root: %v", err)
	}
	child, err = f.comments.Reply(context.Background(), author, eventID, root.ID, "child")
	if err != nil {
		t.Fatalf("add child: %v", err)
	}
	grandchild, err = f.comments.Reply(context.Background(), author, eventID, child.ID, "grandchild")
	if err != nil {
		t.Fatalf("add grandchild: %v", err)
	}
	return root, child, grandchild
}

func TestDeleteCascades(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	guest := f.user(t, "guest")
	e := f.publishedEvent(t, owner, 0, true)
	root, child, grandchild := thread(t, f, guest, e.ID)

	if _, err := f.comments.SetStatus(context.Background(), guest, e.ID, root.ID, model.CommentDelete); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, id := range []string{root.ID, child.ID, grandchild.ID} {
		c, err := f.store.Comments().GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if !c.Deleted {
			t.Errorf("comment %s survived the cascade", id)
		}
	}
}

func TestRestoreCascades(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	guest := f.user(t, "guest")
	e := f.publishedEvent(t, owner, 0, true)
	root, child, grandchild := thread(t, f, guest, e.ID)

	if _, err := f.comments.SetStatus(context.Background(), guest, e.ID, root.ID, model.CommentDelete); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.comments.SetStatus(context.Background(), guest, e.ID, root.ID, model.CommentRestore); err != nil {
		t.Fatalf("restore: %v", err)
	}
	for _, id := range []string{root.ID, child.ID, grandchild.ID} {
		c, err := f.store.Comments().GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if c.Deleted {
			t.Errorf("comment %s not restored", id)
		}
	}
}

func TestRestoreClearsIndependentlyDeletedBranch(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	guest := f.user(t, "guest")
	e := f.publishedEvent(t, owner, 0, true)
	root, child, grandchild := thread(t, f, guest, e.ID)

	// Delete the branch on its own, then the whole thread. Restoring
	// the thread clears the entire subtree, the branch included.
	if _, err := f.comments.SetStatus(context.Background(), guest, e.ID, child.ID, model.CommentDelete); err != nil {
		t.Fatalf("delete branch: %v", err)
	}
	if _, err := f.comments.SetStatus(context.Background(), guest, e.ID, root.ID, model.CommentDelete); err != nil {
		t.Fatalf("delete thread: %v", err)
	}
	if _, err := f.comments.SetStatus(context.Background(), guest, e.ID, root.ID, model.CommentRestore); err != nil {
		t.Fatalf("restore thread: %v", err)
	}

	for _, id := range []string{root.ID, child.ID, grandchild.ID} {
		c, err := f.store.Comments().GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if c.Deleted {
			t.Errorf("comment %s left deleted after the restore cascade", id)
		}
	}
}

func TestRestoreBlockedByDeletedParent(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	guest := f.user(t, "guest")
	e := f.publishedEvent(t, owner, 0, true)
	root, child, _ := thread(t, f, guest, e.ID)

	if _, err := f.comments.SetStatus(context.Background(), guest, e.ID, root.ID, model.CommentDelete); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err := f.comments.SetStatus(context.Background(), guest, e.ID, child.ID, model.CommentRestore)
	wantKind(t, err, apperr.KindConflict)
}

func TestSetStatusIdempotent(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	guest := f.user(t, "guest")
	e := f.publishedEvent(t, owner, 0, true)

	c, err := f.comments.Add(context.Background(), guest, e.ID, "root")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := f.comments.SetStatus(context.Background(), guest, e.ID, c.ID, model.CommentDelete); err != nil {
			t.Fatalf("delete #%d: %v", i+1, err)
		}
	}
	got, err := f.store.Comments().GetByID(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Deleted {
		t.Error("comment not deleted")
	}

	_, err = f.comments.SetStatus(context.Background(), guest, e.ID, c.ID, "PURGE")
	wantKind(t, err, apperr.KindConflict)
}

func TestSetStatusForbidden(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	guest := f.user(t, "guest")
	e := f.publishedEvent(t, owner, 0, true)

	c, err := f.comments.Add(context.Background(), guest, e.ID, "root")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err = f.comments.SetStatus(context.Background(), owner, e.ID, c.ID, model.CommentDelete)
	wantKind(t, err, apperr.KindForbidden)
}

func TestListForEventHidesDeleted(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	guest := f.user(t, "guest")
	e := f.publishedEvent(t, owner, 0, true)

	var kept []string
	for i := 0; i < 5; i++ {
		c, err := f.comments.Add(context.Background(), guest, e.ID, fmt.Sprintf("comment %d", i))
		if err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
		if i == 2 {
			if _, err := f.comments.SetStatus(context.Background(), guest, e.ID, c.ID, model.CommentDelete); err != nil {
				t.Fatalf("delete: %v", err)
			}
			continue
		}
		kept = append(kept, c.ID)
	}

	list, err := f.comments.ListForEvent(context.Background(), guest, e.ID, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != len(kept) {
		t.Fatalf("len = %d, want %d", len(list), len(kept))
	}
	// Newest first.
	for i := range list {
		if want := kept[len(kept)-1-i]; list[i].ID != want {
			t.Errorf("list[%d] = %s, want %s", i, list[i].ID, want)
		}
	}

	page, err := f.comments.ListForEvent(context.Background(), guest, e.ID, 1, 2)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if len(page) != 2 || page[0].ID != kept[2] {
		t.Error("paging window off")
	}
}

func TestListByAuthorScopes(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	guest := f.user(t, "guest")
	e := f.publishedEvent(t, owner, 0, true)

	live, err := f.comments.Add(context.Background(), guest, e.ID, "live")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	gone, err := f.comments.Add(context.Background(), guest, e.ID, "gone")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := f.comments.SetStatus(context.Background(), guest, e.ID, gone.ID, model.CommentDelete); err != nil {
		t.Fatalf("delete: %v", err)
	}

	cases := []struct {
		scope model.CommentScope
		want  []string
	}{
		{model.ShowAll, []string{live.ID, gone.ID}},
		{"", []string{live.ID, gone.ID}}, // empty scope defaults to ALL
		{model.ShowActive, []string{live.ID}},
		{model.ShowDeleted, []string{gone.ID}},
	}
	for _, tc := range cases {
		got, err := f.comments.ListByAuthor(context.Background(), guest, tc.scope, 0, 10)
		if err != nil {
			t.Fatalf("scope %q: %v", tc.scope, err)
		}
		if len(got) != len(tc.want) {
			t.Errorf("scope %q: len = %d, want %d", tc.scope, len(got), len(tc.want))
			continue
		}
		seen := make(map[string]bool, len(got))
		for _, c := range got {
			seen[c.ID] = true
		}
		for _, id := range tc.want {
			if !seen[id] {
				t.Errorf("scope %q: missing comment %s", tc.scope, id)
			}
		}
	}

	_, err = f.comments.ListByAuthor(context.Background(), guest, "WHATEVER", 0, 10)
	wantKind(t, err, apperr.KindValidation)
}

func TestToggleSetting(t *testing.T) {
	f := newFixture()
	owner := f.user(t, "owner")
	guest := f.user(t, "guest")
	e := f.publishedEvent(t, owner, 0, true)

	_, err := f.comments.ToggleSetting(context.Background(), guest, e.ID, model.DisableComments)
	wantKind(t, err, apperr.KindForbidden)

	// Enabling an already-enabled board is a redundant write.
	_, err = f.comments.ToggleSetting(context.Background(), owner, e.ID, model.EnableComments)
	wantKind(t, err, apperr.KindConflict)

	updated, err := f.comments.ToggleSetting(context.Background(), owner, e.ID, model.DisableComments)
	if err != nil {
		t.Fatalf("disable: %v", err)
	}
	if !updated.CommentsDisabled {
		t.Error("comments still enabled")
	}

	_, err = f.comments.ToggleSetting(context.Background(), owner, e.ID, model.DisableComments)
	wantKind(t, err, apperr.KindConflict)
}
