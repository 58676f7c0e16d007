// Пакет backend - клиент внешнего GraphQL API форума. Сервис не хранит данные сам:
// каждый запрос пользователя превращается в запрос к API с его токеном.
//
// Основные возможности:
//   - Выполнение GraphQL запросов и мутаций поверх resty.
//   - Передача токена пользователя в заголовке Authorization.
//   - Разбор ошибок API (HTTP статус и список GraphQL ошибок) в APIError.
//   - Типизированные методы для постов, комментариев, оценок, категорий, анонсов,
//     уведомлений, жалоб и пользователей.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
)

const graphqlPath = "/graphql"

type Client struct {
	http *resty.Client
}

// NewClient создает клиента API. baseURL - адрес API без пути /graphql.
func NewClient(baseURL string, timeout time.Duration) *Client {
	httpClient := resty.New()
	httpClient.SetBaseURL(baseURL)
	httpClient.SetTimeout(timeout)
	httpClient.SetHeader("User-Agent", "Foro/1.0")
	httpClient.SetHeader("Content-Type", "application/json")

	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		slog.Debug("API request", "method", req.Method, "url", req.URL)
		return nil
	})
	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		slog.Debug("API response", "status", resp.StatusCode(), "time", resp.Time())
		return nil
	})

	return &Client{http: httpClient}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// Do выполняет запрос и раскладывает поле data ответа в out. Пустой token
// означает анонимный запрос.
func (c *Client) Do(ctx context.Context, token, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encode graphql request: %w", err)
	}

	req := c.http.R().SetContext(ctx).SetBody(body)
	if token != "" {
		req.SetAuthToken(token)
	}

	resp, err := req.Post(graphqlPath)
	if err := CheckResponse(resp, err); err != nil {
		return err
	}

	var gr graphqlResponse
	if err := json.Unmarshal(resp.Body(), &gr); err != nil {
		return fmt.Errorf("decode graphql response: %w", err)
	}
	if len(gr.Errors) > 0 {
		return &APIError{StatusCode: resp.StatusCode(), Errors: gr.Errors}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(gr.Data, out); err != nil {
		return fmt.Errorf("decode graphql data: %w", err)
	}
	return nil
}
