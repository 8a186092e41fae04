package mediator_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-research-team/dtx-mediator/bus/command"
	"github.com/x-research-team/dtx-mediator/bus/mediator"
	"github.com/x-research-team/dtx-mediator/bus/message"
	"github.com/x-research-team/dtx-mediator/bus/query"
	"github.com/x-research-team/dtx-mediator/bus/result"
)

// Тестовые полезные нагрузки.
type createUser struct {
	Email string
	Name  string
}

type getUser struct {
	UserID string
}

type user struct {
	ID    string
	Email string
	Name  string
}

// Обработчик команды, возвращающий заранее заданный исход и считающий вызовы.
type stubCommandHandler struct {
	outcome result.Result[result.Void]
	calls   atomic.Int64
}

func (h *stubCommandHandler) Handle(ctx context.Context, cmd message.Message) result.Result[result.Void] {
	h.calls.Add(1)
	return h.outcome
}

func createUserHandler(ctx context.Context, cmd command.Command[createUser]) result.Result[result.Void] {
	if !strings.Contains(cmd.Payload().Email, "@") {
		return result.Failure[result.Void](result.NewError("validation", "Invalid email format"))
	}
	return result.Done()
}

func getUserHandler(ctx context.Context, q query.Query[getUser, user]) result.Result[user] {
	if q.Params().UserID == "123" {
		return result.Success(user{ID: "123", Email: "john@example.com", Name: "John Doe"})
	}
	return result.Failure[user](result.NewError("not_found", "User not found"))
}

// Тест: исход обработчика команды возвращается без изменений.
func TestMediator_Dispatch_CommandOutcomeVerbatim(t *testing.T) {
	t.Parallel()

	failure := result.NewError("conflict", "already exists")
	m := mediator.New()
	failing := &stubCommandHandler{outcome: result.Failure[result.Void](failure)}
	succeeding := &stubCommandHandler{outcome: result.Done()}
	m.RegisterCommandHandler("FailingCommand", failing)
	m.RegisterCommandHandler("SucceedingCommand", succeeding)

	res := m.Dispatch(context.Background(), command.New("FailingCommand", struct{}{}))
	require.True(t, res.IsFailure())
	assert.Same(t, failure, res.Err(), "Ошибка обработчика должна передаваться тем же значением")

	res = m.Dispatch(context.Background(), command.New("SucceedingCommand", struct{}{}))
	require.True(t, res.IsSuccess())
	_, ok := res.Value()
	assert.False(t, ok, "Исход команды не несет значения")

	assert.EqualValues(t, 1, failing.calls.Load())
	assert.EqualValues(t, 1, succeeding.calls.Load())
}

// Тест ошибки при отправке команды без зарегистрированного обработчика.
func TestMediator_Dispatch_NoCommandHandler(t *testing.T) {
	t.Parallel()

	m := mediator.New()
	res := m.Dispatch(context.Background(), command.New("CreateUserCommand", createUser{}))

	require.True(t, res.IsFailure())
	assert.Equal(t, "No handler for command: CreateUserCommand", res.Err().Error())
	assert.ErrorIs(t, res.Err(), mediator.ErrNoHandlerForCommand)
	assert.NotErrorIs(t, res.Err(), mediator.ErrNoHandlerForQuery)
}

// Тест ошибки при отправке запроса без зарегистрированного обработчика.
func TestMediator_Dispatch_NoQueryHandler(t *testing.T) {
	t.Parallel()

	m := mediator.New()
	// Обработчик команды с тем же именем не должен находиться для запроса.
	mediator.HandleCommand(m, "GetUserQuery", createUserHandler)

	res := m.Dispatch(context.Background(), query.New[user]("GetUserQuery", getUser{UserID: "123"}))

	require.True(t, res.IsFailure())
	assert.Equal(t, "No handler for query: GetUserQuery", res.Err().Error())
	assert.ErrorIs(t, res.Err(), mediator.ErrNoHandlerForQuery)
}

// Тест сообщения неизвестного вида.
func TestMediator_Dispatch_InvalidMessageType(t *testing.T) {
	t.Parallel()

	m := mediator.New()
	m.RegisterCommandHandler("SomethingHappened", &stubCommandHandler{outcome: result.Done()})

	cases := map[string]message.Message{
		"неизвестный вид":          message.NewHeader(message.Kind("event"), "SomethingHappened"),
		"пустой вид":               message.NewHeader("", "SomethingHappened"),
		"nil сообщение":            nil,
		"nil-указатель на команду": (*command.Command[int])(nil),
		"nil-указатель на запрос":  (*query.Query[getUser, user])(nil),
	}

	for name, msg := range cases {
		msg := msg
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var res result.Result[any]
			require.NotPanics(t, func() {
				res = m.Dispatch(context.Background(), msg)
			})
			require.True(t, res.IsFailure())
			assert.Equal(t, "Invalid message type: neither Command nor Query", res.Err().Error())
			assert.ErrorIs(t, res.Err(), mediator.ErrInvalidMessageType)
		})
	}
}

// Тест повторной регистрации: используется только последний обработчик.
func TestMediator_Register_Overwrite(t *testing.T) {
	t.Parallel()

	m := mediator.New()
	first := &stubCommandHandler{outcome: result.Failure[result.Void](result.NewError("first", "first"))}
	second := &stubCommandHandler{outcome: result.Done()}

	m.RegisterCommandHandler("CreateUserCommand", first)
	m.RegisterCommandHandler("CreateUserCommand", second)

	for i := 0; i < 3; i++ {
		res := m.Dispatch(context.Background(), command.New("CreateUserCommand", createUser{}))
		require.True(t, res.IsSuccess())
	}

	assert.Zero(t, first.calls.Load(), "Замененный обработчик не должен вызываться")
	assert.EqualValues(t, 3, second.calls.Load())
	assert.Equal(t, []string{"CreateUserCommand"}, m.CommandTypes(), "Регистрации не должны накапливаться")
}

// Тест повторной регистрации обработчика запроса.
func TestMediator_Register_QueryOverwrite(t *testing.T) {
	t.Parallel()

	m := mediator.New()
	mediator.HandleQuery(m, "GetUserQuery", getUserHandler)
	mediator.HandleQuery(m, "GetUserQuery", func(ctx context.Context, q query.Query[getUser, user]) result.Result[user] {
		return result.Success(user{ID: q.Params().UserID, Name: "Replacement"})
	})

	got := mediator.Ask(context.Background(), m, query.New[user]("GetUserQuery", getUser{UserID: "123"}))
	require.True(t, got.IsSuccess())
	assert.Equal(t, "Replacement", got.Unwrap().Name, "Должен вызываться последний зарегистрированный обработчик")
	assert.Equal(t, []string{"GetUserQuery"}, m.QueryTypes())
}

// Тест: неудача обработчика запроса возвращается тем же значением ошибки.
func TestMediator_Dispatch_QueryFailureVerbatim(t *testing.T) {
	t.Parallel()

	notFound := result.NewError("not_found", "User not found")
	m := mediator.New()
	mediator.HandleQuery(m, "GetUserQuery", func(ctx context.Context, q query.Query[getUser, user]) result.Result[user] {
		return result.Failure[user](notFound)
	})

	res := m.Dispatch(context.Background(), query.New[user]("GetUserQuery", getUser{UserID: "999"}))
	require.True(t, res.IsFailure())
	assert.Same(t, notFound, res.Err())

	got := mediator.Ask(context.Background(), m, query.New[user]("GetUserQuery", getUser{UserID: "999"}))
	require.True(t, got.IsFailure())
	assert.Same(t, notFound, got.Err())
}

// Тест: nil-указатель в качестве обработчика равносилен nil.
func TestMediator_Register_TypedNilRemoves(t *testing.T) {
	t.Parallel()

	m := mediator.New()
	m.RegisterCommandHandler("CreateUserCommand", &stubCommandHandler{outcome: result.Done()})
	require.True(t, m.HasCommandHandler("CreateUserCommand"))

	var missing *stubCommandHandler
	m.RegisterCommandHandler("CreateUserCommand", missing)
	m.RegisterCommandHandler("OtherCommand", missing)

	assert.False(t, m.HasCommandHandler("CreateUserCommand"))
	assert.False(t, m.HasCommandHandler("OtherCommand"), "nil-указатель не должен регистрироваться")

	var res result.Result[any]
	require.NotPanics(t, func() {
		res = m.Dispatch(context.Background(), command.New("OtherCommand", createUser{}))
	})
	assert.ErrorIs(t, res.Err(), mediator.ErrNoHandlerForCommand)
}

// Тест удаления регистрации через nil.
func TestMediator_Register_NilRemoves(t *testing.T) {
	t.Parallel()

	m := mediator.New()
	mediator.HandleCommand(m, "CreateUserCommand", createUserHandler)
	mediator.HandleQuery(m, "GetUserQuery", getUserHandler)
	require.True(t, m.HasCommandHandler("CreateUserCommand"))
	require.True(t, m.HasQueryHandler("GetUserQuery"))

	m.RegisterCommandHandler("CreateUserCommand", nil)
	mediator.HandleQuery[getUser, user](m, "GetUserQuery", nil)

	assert.False(t, m.HasCommandHandler("CreateUserCommand"))
	assert.False(t, m.HasQueryHandler("GetUserQuery"))
	assert.Empty(t, m.CommandTypes())
	assert.Empty(t, m.QueryTypes())

	res := m.Dispatch(context.Background(), command.New("CreateUserCommand", createUser{}))
	assert.ErrorIs(t, res.Err(), mediator.ErrNoHandlerForCommand)
}

// Тест строго типизированных Send и Ask.
func TestMediator_SendAsk(t *testing.T) {
	t.Parallel()

	m := mediator.New()
	mediator.HandleCommand(m, "CreateUserCommand", createUserHandler)
	mediator.HandleQuery(m, "GetUserQuery", getUserHandler)

	sent := mediator.Send(context.Background(), m, command.New("CreateUserCommand", createUser{Email: "a@b.com"}))
	assert.True(t, sent.IsSuccess())

	got := mediator.Ask(context.Background(), m, query.New[user]("GetUserQuery", getUser{UserID: "123"}))
	require.True(t, got.IsSuccess())
	assert.Equal(t, "John Doe", got.Unwrap().Name)

	name := result.Map(got, func(u user) string { return u.Name })
	assert.Equal(t, result.Success("John Doe"), name)
}

// Тест: обработчик получил сообщение другой формы.
func TestMediator_Dispatch_PayloadMismatch(t *testing.T) {
	t.Parallel()

	m := mediator.New()
	mediator.HandleCommand(m, "CreateUserCommand", createUserHandler)
	mediator.HandleQuery(m, "GetUserQuery", getUserHandler)

	res := m.Dispatch(context.Background(), command.New("CreateUserCommand", "not a payload"))
	require.True(t, res.IsFailure())
	assert.ErrorIs(t, res.Err(), &result.Error{Kind: command.KindPayloadMismatch})

	// Запрос с правильными параметрами, но другим типом результата.
	got := mediator.Ask(context.Background(), m, query.New[string]("GetUserQuery", getUser{UserID: "123"}))
	require.True(t, got.IsFailure())
	assert.ErrorIs(t, got.Err(), &result.Error{Kind: query.KindPayloadMismatch})
}

// Тест: паника внутри обработчика не перехватывается медиатором.
func TestMediator_Dispatch_HandlerPanicPropagates(t *testing.T) {
	t.Parallel()

	m := mediator.New()
	mediator.HandleCommand(m, "ExplodingCommand", func(ctx context.Context, cmd command.Command[int]) result.Result[result.Void] {
		panic("boom")
	})

	assert.PanicsWithValue(t, "boom", func() {
		m.Dispatch(context.Background(), command.New("ExplodingCommand", 1))
	})
}

// Тест: обработчик получает контекст вызывающей стороны.
func TestMediator_Dispatch_PassesContext(t *testing.T) {
	t.Parallel()

	type ctxKey struct{}
	m := mediator.New()
	mediator.HandleQuery(m, "EchoQuery", func(ctx context.Context, q query.Query[struct{}, string]) result.Result[string] {
		v, _ := ctx.Value(ctxKey{}).(string)
		return result.Success(v)
	})

	ctx := context.WithValue(context.Background(), ctxKey{}, "trace-42")
	got := mediator.Ask(ctx, m, query.New[string]("EchoQuery", struct{}{}))
	assert.Equal(t, "trace-42", got.Unwrap())
}

// Тест на потокобезопасность: параллельная диспетчеризация и регистрация.
func TestMediator_Dispatch_Concurrency(t *testing.T) {
	t.Parallel()

	m := mediator.New()
	var handled atomic.Int64
	mediator.HandleQuery(m, "CounterQuery", func(ctx context.Context, q query.Query[int, int]) result.Result[int] {
		handled.Add(1)
		return result.Success(q.Params() * 2)
	})

	goroutines := 100
	var wg sync.WaitGroup
	wg.Add(goroutines * 2)

	results := make([]int, goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			got := mediator.Ask(context.Background(), m, query.New[int]("CounterQuery", i))
			assert.True(t, got.IsSuccess())
			results[i] = got.Unwrap()
		}(i)

		go func(i int) {
			defer wg.Done()
			m.RegisterCommandHandler(fmt.Sprintf("Command%d", i), &stubCommandHandler{outcome: result.Done()})
		}(i)
	}

	wg.Wait()

	assert.EqualValues(t, goroutines, handled.Load())
	for i, v := range results {
		assert.Equal(t, i*2, v)
	}
	assert.Len(t, m.CommandTypes(), goroutines)
}
