package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Hazratqul21/alif-24-sub000/internal/domain/entity"
	"github.com/Hazratqul21/alif-24-sub000/internal/domain/repository"
	apperrors "github.com/Hazratqul21/alif-24-sub000/internal/pkg/errors"
)

// Ограничения на публичные поля участника
const (
	maxDisplayNameLen = 50
	maxAvatarTagLen   = 10
)

// JoinResult - итог подключения игрока к викторине
type JoinResult struct {
	QuizID        string `json:"quiz_id"`
	Title         string `json:"title"`
	ParticipantID string `json:"participant_id"`
}

// PlayerQuestionView - текущий вопрос глазами игрока, без правильного ответа
type PlayerQuestionView struct {
	Status          string              `json:"status"`
	Index           int                 `json:"index"`
	Total           int                 `json:"total"`
	Question        *playerQuestionBody `json:"question,omitempty"`
	AlreadyAnswered bool                `json:"already_answered"`
}

type playerQuestionBody struct {
	ID           string             `json:"id"`
	Text         string             `json:"text"`
	Image        string             `json:"image,omitempty"`
	Options      entity.StringArray `json:"options"`
	Points       int                `json:"points"`
	TimeLimitSec int                `json:"time_limit_sec"`
}

// SubmitAnswerInput - параметры отправки ответа
type SubmitAnswerInput struct {
	QuestionID     string
	SelectedIndex  int
	TimeToAnswerMs int64
}

// SubmitAnswerResult - немедленная обратная связь по ответу
type SubmitAnswerResult struct {
	IsCorrect     bool `json:"is_correct"`
	PointsEarned  int  `json:"points_earned"`
	TotalScore    int  `json:"total_score"`
	CurrentStreak int  `json:"current_streak"`
}

// PlayerResultView - личный итог игрока.
// Rank и CoinsEarned появляются только после итогового расчета.
type PlayerResultView struct {
	Status       string `json:"status"`
	Settled      bool   `json:"settled"`
	Rank         int    `json:"rank,omitempty"`
	TotalScore   int    `json:"total_score"`
	CorrectCount int    `json:"correct_count"`
	WrongCount   int    `json:"wrong_count"`
	BestStreak   int    `json:"best_streak"`
	CoinsEarned  int    `json:"coins_earned,omitempty"`
}

// PlayerService реализует операции игрока
type PlayerService struct {
	quizRepo        repository.QuizRepository
	questionRepo    repository.QuestionRepository
	participantRepo repository.ParticipantRepository
	answerRepo      repository.AnswerRepository
	notifier        QuizNotifier
}

// NewPlayerService создает новый сервис игроков
func NewPlayerService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	participantRepo repository.ParticipantRepository,
	answerRepo repository.AnswerRepository,
	notifier QuizNotifier,
) *PlayerService {
	return &PlayerService{
		quizRepo:        quizRepo,
		questionRepo:    questionRepo,
		participantRepo: participantRepo,
		answerRepo:      answerRepo,
		notifier:        notifier,
	}
}

// Join подключает игрока к викторине по join-коду.
// Повторное подключение идемпотентно: возвращается существующий участник.
func (s *PlayerService) Join(ctx context.Context, playerID, joinCode, displayName, avatarTag string) (*JoinResult, error) {
	quiz, err := s.quizRepo.GetByJoinCode(ctx, joinCode)
	if err != nil {
		return nil, err
	}
	if !quiz.IsWaiting() {
		return nil, fmt.Errorf("%w: lobby is not open for joining", apperrors.ErrInvalidState)
	}

	// Повторный join того же игрока отдает существующее участие без ошибки
	existing, err := s.participantRepo.GetByQuizAndPlayer(ctx, quiz.ID, playerID)
	if err == nil {
		return &JoinResult{QuizID: quiz.ID, Title: quiz.Title, ParticipantID: existing.ID}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	participant := &entity.Participant{
		ID:          entity.NewID(),
		QuizID:      quiz.ID,
		PlayerID:    playerID,
		DisplayName: truncateRunes(displayName, maxDisplayNameLen),
		AvatarTag:   truncateRunes(avatarTag, maxAvatarTagLen),
		State:       entity.ParticipantStateJoined,
		JoinedAt:    nowUTC(),
	}

	if err := s.participantRepo.CreateBounded(ctx, participant, quiz.MaxParticipants); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateJoin) {
			// Гонка двойного подключения: победившая вставка уже есть
			existing, lookupErr := s.participantRepo.GetByQuizAndPlayer(ctx, quiz.ID, playerID)
			if lookupErr != nil {
				return nil, err
			}
			return &JoinResult{QuizID: quiz.ID, Title: quiz.Title, ParticipantID: existing.ID}, nil
		}
		return nil, err
	}

	s.broadcast(quiz.ID, "quiz:player_joined", map[string]interface{}{
		"quiz_id":        quiz.ID,
		"participant_id": participant.ID,
		"display_name":   participant.DisplayName,
		"avatar_tag":     participant.AvatarTag,
	})

	log.Printf("[PlayerService] Игрок подключился: quiz=%s player=%s participant=%s", quiz.ID, playerID, participant.ID)
	return &JoinResult{QuizID: quiz.ID, Title: quiz.Title, ParticipantID: participant.ID}, nil
}

// membership загружает участие игрока в викторине.
// Игрок, не состоящий в викторине, получает ErrForbidden.
func (s *PlayerService) membership(ctx context.Context, quizID, playerID string) (*entity.Participant, error) {
	participant, err := s.participantRepo.GetByQuizAndPlayer(ctx, quizID, playerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrForbidden
		}
		return nil, err
	}
	return participant, nil
}

// PlayerQuestion возвращает текущий вопрос глазами игрока.
// Правильный ответ скрыт; отмечается, отвечал ли игрок уже на этот вопрос.
func (s *PlayerService) PlayerQuestion(ctx context.Context, playerID, quizID string) (*PlayerQuestionView, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.Status == entity.QuizStatusCancelled {
		return nil, apperrors.ErrQuizGone
	}

	participant, err := s.membership(ctx, quizID, playerID)
	if err != nil {
		return nil, err
	}

	total, err := s.questionRepo.CountByQuizID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if quiz.IsWaiting() {
		return &PlayerQuestionView{Status: entity.QuizStatusWaiting, Total: int(total)}, nil
	}
	if quiz.Status == entity.QuizStatusFinished || quiz.IsPastLastQuestion(int(total)) {
		return &PlayerQuestionView{Status: entity.QuizStatusFinished, Index: quiz.CurrentQuestionIndex, Total: int(total)}, nil
	}
	if !quiz.IsActive() {
		return nil, fmt.Errorf("%w: quiz has not started yet", apperrors.ErrInvalidState)
	}

	question, err := s.questionRepo.GetByQuizAndPosition(ctx, quizID, quiz.CurrentQuestionIndex)
	if err != nil {
		return nil, err
	}

	answered, err := s.answerRepo.Exists(ctx, participant.ID, question.ID)
	if err != nil {
		return nil, err
	}

	return &PlayerQuestionView{
		Status: entity.QuizStatusActive,
		Index:  quiz.CurrentQuestionIndex,
		Total:  int(total),
		Question: &playerQuestionBody{
			ID:           question.ID,
			Text:         question.Text,
			Image:        question.Image,
			Options:      question.Options,
			Points:       question.Points,
			TimeLimitSec: question.TimeLimitSec,
		},
		AlreadyAnswered: answered,
	}, nil
}

// SubmitAnswer принимает ответ игрока на текущий вопрос.
// Сервер - единственный источник истины для is_correct и points_earned;
// заявленное клиентом время обрезается, а не отклоняется.
func (s *PlayerService) SubmitAnswer(ctx context.Context, playerID, quizID string, input SubmitAnswerInput) (*SubmitAnswerResult, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.IsTerminal() {
		return nil, apperrors.ErrQuizGone
	}
	if !quiz.IsActive() {
		return nil, fmt.Errorf("%w: answers are only accepted while the quiz is running", apperrors.ErrInvalidState)
	}

	participant, err := s.membership(ctx, quizID, playerID)
	if err != nil {
		return nil, err
	}

	question, err := s.questionRepo.GetByID(ctx, input.QuestionID)
	if err != nil {
		return nil, err
	}
	if question.QuizID != quizID {
		return nil, apperrors.ErrNotFound
	}
	// Ответы принимаются только на текущий вопрос: ни на прошедший, ни на будущий
	if question.Position != quiz.CurrentQuestionIndex {
		return nil, fmt.Errorf("%w: question is not the current one", apperrors.ErrInvalidState)
	}
	if !question.IsValidOption(input.SelectedIndex) {
		return nil, fmt.Errorf("%w: selected_index is outside the question options", apperrors.ErrOutOfRange)
	}

	timeMs := question.ClampResponseTime(input.TimeToAnswerMs)
	isCorrect := question.IsCorrect(input.SelectedIndex)
	points := question.CalculatePoints(isCorrect, timeMs)

	answer := &entity.Answer{
		ID:             entity.NewID(),
		ParticipantID:  participant.ID,
		QuestionID:     question.ID,
		SelectedIndex:  input.SelectedIndex,
		IsCorrect:      isCorrect,
		PointsEarned:   points,
		TimeToAnswerMs: timeMs,
	}

	updated, err := s.answerRepo.Submit(ctx, answer)
	if err != nil {
		return nil, err
	}

	return &SubmitAnswerResult{
		IsCorrect:     isCorrect,
		PointsEarned:  points,
		TotalScore:    updated.TotalScore,
		CurrentStreak: updated.CurrentStreak,
	}, nil
}

// PlayerResult возвращает личный итог игрока.
// До итогового расчета ранг и монеты отсутствуют.
func (s *PlayerService) PlayerResult(ctx context.Context, playerID, quizID string) (*PlayerResultView, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.Status == entity.QuizStatusCancelled {
		return nil, apperrors.ErrQuizGone
	}

	participant, err := s.membership(ctx, quizID, playerID)
	if err != nil {
		return nil, err
	}

	view := &PlayerResultView{
		Status:       quiz.Status,
		Settled:      participant.IsSettled(),
		TotalScore:   participant.TotalScore,
		CorrectCount: participant.CorrectCount,
		WrongCount:   participant.WrongCount,
		BestStreak:   participant.BestStreak,
	}
	if participant.IsSettled() {
		view.Rank = participant.Rank
		view.CoinsEarned = participant.CoinsEarned
	}
	return view, nil
}

func (s *PlayerService) broadcast(quizID, eventType string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastToQuiz(quizID, eventType, payload)
}
