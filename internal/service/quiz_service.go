package service

import (
	"context"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/Hazratqul21/alif-24-sub000/internal/domain/entity"
	"github.com/Hazratqul21/alif-24-sub000/internal/domain/repository"
	apperrors "github.com/Hazratqul21/alif-24-sub000/internal/pkg/errors"
)

// QuizNotifier рассылает события викторины подключенным клиентам.
// Рассылка best-effort: HTTP-поверхность остаётся источником истины,
// потерянное событие не ломает ход игры.
type QuizNotifier interface {
	BroadcastToQuiz(quizID string, eventType string, payload interface{})
}

// CreateQuizInput - параметры создания викторины
type CreateQuizInput struct {
	Title            string
	Description      string
	TimePerQuestion  int
	ShuffleQuestions bool
	ShuffleOptions   bool
}

// QuestionDraft - черновик вопроса при пакетном добавлении
type QuestionDraft struct {
	Text         string
	Image        string
	Options      []string
	CorrectIndex int
	Points       int
	TimeLimitSec int
}

// LobbyStatusView - состояние лобби для ведущего
type LobbyStatusView struct {
	Status          string `json:"status"`
	JoinCode        string `json:"join_code"`
	Participants    int64  `json:"participants"`
	MaxParticipants int    `json:"max_participants"`
}

// HostQuestionView - текущий вопрос глазами ведущего (с правильным ответом)
type HostQuestionView struct {
	Finished     bool             `json:"finished"`
	Index        int              `json:"index"`
	Total        int              `json:"total"`
	Question     *entity.Question `json:"question,omitempty"`
	CorrectIndex int              `json:"correct_index"`
}

// QuizService реализует операции ведущего и машину состояний викторины
type QuizService struct {
	quizRepo        repository.QuizRepository
	questionRepo    repository.QuestionRepository
	participantRepo repository.ParticipantRepository
	answerRepo      repository.AnswerRepository
	codeGenerator   *JoinCodeGenerator
	settlement      *SettlementService
	notifier        QuizNotifier
	maxParticipants int
}

// NewQuizService создает новый сервис викторин.
// maxParticipants задает вместимость лобби новых викторин (<=0 - предел по умолчанию).
func NewQuizService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	participantRepo repository.ParticipantRepository,
	answerRepo repository.AnswerRepository,
	codeGenerator *JoinCodeGenerator,
	settlement *SettlementService,
	notifier QuizNotifier,
	maxParticipants int,
) *QuizService {
	if maxParticipants <= 0 || maxParticipants > entity.MaxParticipantsPerQuiz {
		maxParticipants = entity.MaxParticipantsPerQuiz
	}
	return &QuizService{
		quizRepo:        quizRepo,
		questionRepo:    questionRepo,
		participantRepo: participantRepo,
		answerRepo:      answerRepo,
		codeGenerator:   codeGenerator,
		settlement:      settlement,
		notifier:        notifier,
		maxParticipants: maxParticipants,
	}
}

// ownedQuiz загружает викторину и проверяет владение.
// Чужая викторина - ErrForbidden, несуществующая - ErrNotFound.
func (s *QuizService) ownedQuiz(ctx context.Context, hostID, quizID string) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.HostID != hostID {
		return nil, apperrors.ErrForbidden
	}
	return quiz, nil
}

// CreateQuiz создает викторину в состоянии created и выдает ей join-код
func (s *QuizService) CreateQuiz(ctx context.Context, hostID string, input CreateQuizInput) (*entity.Quiz, error) {
	if input.Title == "" || utf8.RuneCountInString(input.Title) > 100 {
		return nil, fmt.Errorf("%w: title must be 1-100 characters", apperrors.ErrValidation)
	}
	if utf8.RuneCountInString(input.Description) > 500 {
		return nil, fmt.Errorf("%w: description must be at most 500 characters", apperrors.ErrValidation)
	}
	if input.TimePerQuestion < entity.MinTimePerQuestionSec || input.TimePerQuestion > entity.MaxTimePerQuestionSec {
		return nil, fmt.Errorf("%w: time_per_question must be between %d and %d seconds",
			apperrors.ErrOutOfRange, entity.MinTimePerQuestionSec, entity.MaxTimePerQuestionSec)
	}

	joinCode, err := s.codeGenerator.Generate(ctx)
	if err != nil {
		return nil, err
	}

	quiz := &entity.Quiz{
		ID:               entity.NewID(),
		HostID:           hostID,
		Title:            input.Title,
		Description:      input.Description,
		JoinCode:         joinCode,
		TimePerQuestion:  input.TimePerQuestion,
		ShuffleQuestions: input.ShuffleQuestions,
		ShuffleOptions:   input.ShuffleOptions,
		MaxParticipants:  s.maxParticipants,
		Status:           entity.QuizStatusCreated,
	}

	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, err
	}

	log.Printf("[QuizService] Викторина создана: id=%s host=%s code=%s", quiz.ID, hostID, joinCode)
	return quiz, nil
}

// AddQuestions добавляет пакет вопросов с последовательными позициями.
// Разрешено только в состоянии created.
func (s *QuizService) AddQuestions(ctx context.Context, hostID, quizID string, drafts []QuestionDraft) (int, error) {
	quiz, err := s.ownedQuiz(ctx, hostID, quizID)
	if err != nil {
		return 0, err
	}
	if quiz.IsTerminal() {
		return 0, apperrors.ErrQuizGone
	}
	if !quiz.IsCreated() {
		return 0, fmt.Errorf("%w: questions can only be added before the lobby opens", apperrors.ErrInvalidState)
	}
	if len(drafts) == 0 {
		return 0, fmt.Errorf("%w: at least one question is required", apperrors.ErrValidation)
	}

	existing, err := s.questionRepo.CountByQuizID(ctx, quizID)
	if err != nil {
		return 0, err
	}

	questions := make([]entity.Question, 0, len(drafts))
	for i, draft := range drafts {
		if draft.Text == "" {
			return 0, fmt.Errorf("%w: question %d has empty text", apperrors.ErrValidation, i)
		}
		if len(draft.Options) < entity.MinOptionsPerQuestion || len(draft.Options) > entity.MaxOptionsPerQuestion {
			return 0, fmt.Errorf("%w: question %d must have %d-%d options",
				apperrors.ErrValidation, i, entity.MinOptionsPerQuestion, entity.MaxOptionsPerQuestion)
		}
		if draft.CorrectIndex < 0 || draft.CorrectIndex >= len(draft.Options) {
			return 0, fmt.Errorf("%w: question %d correct_index is outside its options", apperrors.ErrOutOfRange, i)
		}

		points := draft.Points
		if points <= 0 {
			points = entity.DefaultQuestionPoints
		}
		// Лимит времени разрешается на этапе создания: дальше подсчет очков
		// работает только с собственным лимитом вопроса
		timeLimit := draft.TimeLimitSec
		if timeLimit <= 0 {
			timeLimit = quiz.TimePerQuestion
		}
		if timeLimit < entity.MinTimePerQuestionSec || timeLimit > entity.MaxTimePerQuestionSec {
			return 0, fmt.Errorf("%w: question %d time_limit must be between %d and %d seconds",
				apperrors.ErrOutOfRange, i, entity.MinTimePerQuestionSec, entity.MaxTimePerQuestionSec)
		}

		questions = append(questions, entity.Question{
			ID:           entity.NewID(),
			QuizID:       quizID,
			Position:     int(existing) + i,
			Text:         draft.Text,
			Image:        draft.Image,
			Options:      entity.StringArray(draft.Options),
			CorrectIndex: draft.CorrectIndex,
			Points:       points,
			TimeLimitSec: timeLimit,
		})
	}

	if err := s.questionRepo.CreateBatch(ctx, questions); err != nil {
		return 0, err
	}

	log.Printf("[QuizService] Добавлено %d вопросов к викторине %s", len(questions), quizID)
	return len(questions), nil
}

// OpenLobby переводит викторину created → waiting и открывает подключение игроков
func (s *QuizService) OpenLobby(ctx context.Context, hostID, quizID string) (*entity.Quiz, error) {
	quiz, err := s.ownedQuiz(ctx, hostID, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.IsTerminal() {
		return nil, apperrors.ErrQuizGone
	}

	count, err := s.questionRepo.CountByQuizID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: cannot open lobby without questions", apperrors.ErrInvalidState)
	}

	if err := s.quizRepo.OpenLobby(ctx, quizID); err != nil {
		return nil, err
	}
	quiz.Status = entity.QuizStatusWaiting

	log.Printf("[QuizService] Лобби открыто: quiz=%s code=%s", quizID, quiz.JoinCode)
	return quiz, nil
}

// LobbyStatus возвращает состояние лобби без изменения состояния
func (s *QuizService) LobbyStatus(ctx context.Context, hostID, quizID string) (*LobbyStatusView, error) {
	quiz, err := s.ownedQuiz(ctx, hostID, quizID)
	if err != nil {
		return nil, err
	}

	count, err := s.participantRepo.CountByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	return &LobbyStatusView{
		Status:          quiz.Status,
		JoinCode:        quiz.JoinCode,
		Participants:    count,
		MaxParticipants: quiz.MaxParticipants,
	}, nil
}

// StartQuiz переводит викторину waiting → active и запускает первый вопрос
func (s *QuizService) StartQuiz(ctx context.Context, hostID, quizID string) (int, error) {
	quiz, err := s.ownedQuiz(ctx, hostID, quizID)
	if err != nil {
		return 0, err
	}
	if quiz.IsTerminal() {
		return 0, apperrors.ErrQuizGone
	}
	if !quiz.IsWaiting() {
		return 0, fmt.Errorf("%w: quiz can only start from an open lobby", apperrors.ErrInvalidState)
	}

	participants, err := s.participantRepo.CountByQuiz(ctx, quizID)
	if err != nil {
		return 0, err
	}
	if participants == 0 {
		return 0, fmt.Errorf("%w: cannot start quiz without participants", apperrors.ErrInvalidState)
	}

	totalQuestions, err := s.questionRepo.CountByQuizID(ctx, quizID)
	if err != nil {
		return 0, err
	}

	if err := s.quizRepo.Start(ctx, quizID, time.Now()); err != nil {
		return 0, err
	}

	if err := s.participantRepo.SetStateForQuiz(ctx, quizID, entity.ParticipantStateAnswering); err != nil {
		log.Printf("[QuizService] Ошибка перевода участников в answering: quiz=%s err=%v", quizID, err)
	}

	s.broadcast(quizID, "quiz:started", map[string]interface{}{
		"quiz_id":         quizID,
		"total_questions": totalQuestions,
	})

	log.Printf("[QuizService] Викторина запущена: quiz=%s участников=%d вопросов=%d", quizID, participants, totalQuestions)
	return int(totalQuestions), nil
}

// CurrentQuestion возвращает текущий вопрос глазами ведущего.
// Если указатель вышел за последний вопрос, возвращает finished-представление.
func (s *QuizService) CurrentQuestion(ctx context.Context, hostID, quizID string) (*HostQuestionView, error) {
	quiz, err := s.ownedQuiz(ctx, hostID, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.Status == entity.QuizStatusCancelled {
		return nil, apperrors.ErrQuizGone
	}
	if !quiz.IsActive() && quiz.Status != entity.QuizStatusFinished {
		return nil, fmt.Errorf("%w: quiz has no current question yet", apperrors.ErrInvalidState)
	}

	return s.hostQuestionView(ctx, quiz)
}

func (s *QuizService) hostQuestionView(ctx context.Context, quiz *entity.Quiz) (*HostQuestionView, error) {
	total, err := s.questionRepo.CountByQuizID(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}

	if quiz.Status == entity.QuizStatusFinished || quiz.IsPastLastQuestion(int(total)) {
		return &HostQuestionView{
			Finished: true,
			Index:    quiz.CurrentQuestionIndex,
			Total:    int(total),
		}, nil
	}

	question, err := s.questionRepo.GetByQuizAndPosition(ctx, quiz.ID, quiz.CurrentQuestionIndex)
	if err != nil {
		return nil, err
	}

	return &HostQuestionView{
		Finished:     false,
		Index:        quiz.CurrentQuestionIndex,
		Total:        int(total),
		Question:     question,
		CorrectIndex: question.CorrectIndex,
	}, nil
}

// NextQuestion продвигает указатель текущего вопроса.
// Выход за последний вопрос завершает викторину и запускает итоговый расчет.
// Конкурентное продвижение разрешается оптимистично: проигравший вызов,
// заставший желаемый индекс уже установленным, считается no-op успехом.
func (s *QuizService) NextQuestion(ctx context.Context, hostID, quizID string) (*HostQuestionView, error) {
	quiz, err := s.ownedQuiz(ctx, hostID, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.IsTerminal() {
		return nil, apperrors.ErrQuizGone
	}
	if !quiz.IsActive() {
		return nil, fmt.Errorf("%w: only an active quiz can advance", apperrors.ErrInvalidState)
	}

	total, err := s.questionRepo.CountByQuizID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	fromIndex := quiz.CurrentQuestionIndex
	advanced, err := s.quizRepo.AdvanceQuestionIndex(ctx, quizID, fromIndex)
	if err != nil {
		return nil, err
	}
	if !advanced {
		// Гонка проиграна: перечитываем и смотрим, кто успел раньше
		fresh, err := s.quizRepo.GetByID(ctx, quizID)
		if err != nil {
			return nil, err
		}
		if fresh.IsTerminal() {
			return s.hostQuestionView(ctx, fresh)
		}
		if fresh.CurrentQuestionIndex != fromIndex+1 {
			return nil, fmt.Errorf("%w: quiz advanced concurrently past the requested question", apperrors.ErrInvalidState)
		}
		quiz = fresh
	} else {
		quiz.CurrentQuestionIndex = fromIndex + 1
	}

	if quiz.IsPastLastQuestion(int(total)) {
		if _, err := s.finishQuiz(ctx, quiz); err != nil {
			return nil, err
		}
		return &HostQuestionView{Finished: true, Index: quiz.CurrentQuestionIndex, Total: int(total)}, nil
	}

	s.broadcast(quizID, "quiz:question_advanced", map[string]interface{}{
		"quiz_id": quizID,
		"index":   quiz.CurrentQuestionIndex,
		"total":   total,
	})

	return s.hostQuestionView(ctx, quiz)
}

// QuestionResults возвращает агрегаты ответов на вопрос викторины
func (s *QuizService) QuestionResults(ctx context.Context, hostID, quizID, questionID string) (*repository.AnswerStats, error) {
	if _, err := s.ownedQuiz(ctx, hostID, quizID); err != nil {
		return nil, err
	}

	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if question.QuizID != quizID {
		return nil, apperrors.ErrNotFound
	}

	return s.answerRepo.StatsByQuestion(ctx, questionID, question.OptionsCount())
}

// Leaderboard возвращает участников в порядке таблицы лидеров.
// Порядок один и тот же для активной и завершенной викторины; у
// рассчитанной викторины таблица отдается из кеша итогового расчета.
func (s *QuizService) Leaderboard(ctx context.Context, hostID, quizID string) ([]entity.Participant, error) {
	if _, err := s.ownedQuiz(ctx, hostID, quizID); err != nil {
		return nil, err
	}
	return s.settlement.Leaderboard(ctx, quizID)
}

// EndQuiz принудительно завершает викторину и возвращает итоговую таблицу.
// Повторное завершение уже завершенной викторины идемпотентно: итоговый
// расчет детерминирован, а Reward Sink дедуплицирует начисления.
func (s *QuizService) EndQuiz(ctx context.Context, hostID, quizID string) ([]entity.Participant, error) {
	quiz, err := s.ownedQuiz(ctx, hostID, quizID)
	if err != nil {
		return nil, err
	}

	switch quiz.Status {
	case entity.QuizStatusActive:
		return s.finishQuiz(ctx, quiz)
	case entity.QuizStatusFinished:
		return s.settlement.FinalizeQuiz(ctx, quizID)
	case entity.QuizStatusCancelled:
		return nil, apperrors.ErrQuizGone
	default:
		return nil, fmt.Errorf("%w: only an active quiz can be ended", apperrors.ErrInvalidState)
	}
}

// finishQuiz переводит active → finished и запускает итоговый расчет
func (s *QuizService) finishQuiz(ctx context.Context, quiz *entity.Quiz) ([]entity.Participant, error) {
	if err := s.quizRepo.Finish(ctx, quiz.ID, time.Now()); err != nil {
		return nil, err
	}

	leaderboard, err := s.settlement.FinalizeQuiz(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}

	log.Printf("[QuizService] Викторина завершена: quiz=%s участников=%d", quiz.ID, len(leaderboard))
	return leaderboard, nil
}

// CancelQuiz отменяет еще не начатую викторину (created или waiting)
func (s *QuizService) CancelQuiz(ctx context.Context, hostID, quizID string) error {
	quiz, err := s.ownedQuiz(ctx, hostID, quizID)
	if err != nil {
		return err
	}
	if quiz.IsTerminal() {
		return apperrors.ErrQuizGone
	}
	if quiz.IsActive() {
		return fmt.Errorf("%w: an active quiz must be ended, not cancelled", apperrors.ErrInvalidState)
	}

	if err := s.quizRepo.Cancel(ctx, quizID); err != nil {
		return err
	}

	s.broadcast(quizID, "quiz:cancelled", map[string]interface{}{"quiz_id": quizID})
	log.Printf("[QuizService] Викторина отменена: quiz=%s", quizID)
	return nil
}

// DeleteQuiz удаляет викторину со всеми вопросами, участниками и ответами.
// Активную викторину удалить нельзя - сперва end или cancel.
func (s *QuizService) DeleteQuiz(ctx context.Context, hostID, quizID string) error {
	quiz, err := s.ownedQuiz(ctx, hostID, quizID)
	if err != nil {
		return err
	}
	if quiz.IsActive() {
		return fmt.Errorf("%w: cannot delete a running quiz", apperrors.ErrInvalidState)
	}

	if err := s.quizRepo.Delete(ctx, quizID); err != nil {
		return err
	}
	s.settlement.InvalidateLeaderboard(quizID)

	log.Printf("[QuizService] Викторина удалена: quiz=%s", quizID)
	return nil
}

// GetQuiz возвращает викторину ведущего вместе с вопросами
func (s *QuizService) GetQuiz(ctx context.Context, hostID, quizID string) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetWithQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.HostID != hostID {
		return nil, apperrors.ErrForbidden
	}
	return quiz, nil
}

// ListQuizzes возвращает викторины ведущего с пагинацией
func (s *QuizService) ListQuizzes(ctx context.Context, hostID string, limit, offset int) ([]entity.Quiz, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.quizRepo.ListByHost(ctx, hostID, limit, offset)
}

func (s *QuizService) broadcast(quizID, eventType string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastToQuiz(quizID, eventType, payload)
}
