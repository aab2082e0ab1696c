package dto

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hugh/kanmind/internal/api/validation"
	"github.com/hugh/kanmind/internal/boards"
	"github.com/hugh/kanmind/internal/database/models"
)

type CreateBoardRequest struct {
	Title   string          `json:"title"`
	Members json.RawMessage `json:"members"`
}

func (r CreateBoardRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if msg := validation.CheckTitle(r.Title); msg != "" {
		errors["title"] = msg
	}
	if !isNull(r.Members) {
		if _, msg := parseIDList(r.Members); msg != "" {
			errors["members"] = msg
		}
	}
	return errors
}

// Input assumes Validate reported no problems.
func (r CreateBoardRequest) Input() boards.CreateInput {
	in := boards.CreateInput{Title: r.Title}
	if !isNull(r.Members) {
		in.MemberIDs, _ = parseIDList(r.Members)
	}
	return in
}

// UpdateBoardRequest keeps members raw so a non-list value can be reported
// separately from unknown ids. A null members value counts as absent.
type UpdateBoardRequest struct {
	Title   *string         `json:"title"`
	Members json.RawMessage `json:"members"`
}

// Input converts the request to a store update. Malformed fields are carried
// as messages on the input; the store reports them after the access check.
func (r UpdateBoardRequest) Input() boards.UpdateInput {
	var in boards.UpdateInput

	if r.Title != nil {
		in.Title = r.Title
		in.TitleErr = validation.CheckTitle(*r.Title)
	}

	if isNull(r.Members) {
		return in
	}
	in.MembersSet = true
	in.MemberIDs, in.MembersErr = parseIDList(r.Members)
	return in
}

type BoardSummaryResponse struct {
	ID                 uuid.UUID `json:"id"`
	Title              string    `json:"title"`
	MemberCount        int       `json:"member_count"`
	TicketCount        int       `json:"ticket_count"`
	TasksToDoCount     int       `json:"tasks_to_do_count"`
	TasksHighPrioCount int       `json:"tasks_high_prio_count"`
	OwnerID            uuid.UUID `json:"owner_id"`
}

func NewBoardSummary(b *models.Board, agg boards.Aggregates) BoardSummaryResponse {
	return BoardSummaryResponse{
		ID:                 b.ID,
		Title:              b.Title,
		MemberCount:        agg.MemberCount,
		TicketCount:        agg.TicketCount,
		TasksToDoCount:     agg.TasksToDoCount,
		TasksHighPrioCount: agg.TasksHighPrioCount,
		OwnerID:            b.OwnerID,
	}
}

type BoardDetailResponse struct {
	ID      uuid.UUID           `json:"id"`
	Title   string              `json:"title"`
	OwnerID uuid.UUID           `json:"owner_id"`
	Members []UserSummary       `json:"members"`
	Tasks   []BoardTaskResponse `json:"tasks"`
}

func NewBoardDetail(b *models.Board) BoardDetailResponse {
	tasks := make([]BoardTaskResponse, len(b.Tasks))
	for i := range b.Tasks {
		tasks[i] = NewBoardTask(&b.Tasks[i])
	}
	return BoardDetailResponse{
		ID:      b.ID,
		Title:   b.Title,
		OwnerID: b.OwnerID,
		Members: NewUserSummaries(b.Members),
		Tasks:   tasks,
	}
}

type BoardPatchResponse struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	OwnerData   *UserSummary  `json:"owner_data"`
	MembersData []UserSummary `json:"members_data"`
}

func NewBoardPatch(b *models.Board) BoardPatchResponse {
	return BoardPatchResponse{
		ID:          b.ID,
		Title:       b.Title,
		OwnerData:   NewUserSummaryPtr(b.Owner),
		MembersData: NewUserSummaries(b.Members),
	}
}
