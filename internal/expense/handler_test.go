package expense_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/approvalengine/expense-service/internal"
	"github.com/approvalengine/expense-service/internal/expense"
)

func TestExpenseHandler(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ExpenseHandler Suite")
}

type mockReceiptStorage struct {
	url string
	err error
}

func (m *mockReceiptStorage) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	io.Copy(io.Discard, r)
	return m.url, nil
}

func buildMultipart(fields map[string]string, receipt []byte, receiptContentType string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	if receipt != nil {
		hdr := make(map[string][]string)
		hdr["Content-Disposition"] = []string{`form-data; name="receipt"; filename="receipt.bin"`}
		if receiptContentType != "" {
			hdr["Content-Type"] = []string{receiptContentType}
		}
		part, _ := w.CreatePart(hdr)
		part.Write(receipt)
	}
	w.Close()
	return body, w.FormDataContentType()
}

func withPrincipal(r *http.Request, p internal.Principal) *http.Request {
	return r.WithContext(internal.ContextWithPrincipal(r.Context(), p))
}

var _ = Describe("Handler.CreateExpense", func() {
	var (
		repo     *mockRepository
		builder  *mockChainBuilder
		querier  *mockChainQuerier
		svc      *expense.Service
		storage  *mockReceiptStorage
		employee = internal.Principal{UserID: 1, CompanyID: 1, Role: internal.RoleEmployee}
		upload   = internal.UploadConfig{MaxSizeBytes: 1024, AllowedMediaTypes: []string{"image/*", "application/pdf"}}
	)

	BeforeEach(func() {
		repo = newMockRepository()
		builder = &mockChainBuilder{result: &expense.Expense{ID: 1, Status: expense.StatusPending}}
		querier = newMockChainQuerier()
		svc = expense.NewService(repo, builder, querier)
		storage = &mockReceiptStorage{url: "/uploads/abc.png"}
	})

	fields := func() map[string]string {
		return map[string]string{
			"amount":      "125.50",
			"currency":    "usd",
			"category":    "travel",
			"description": "cab fare",
			"date":        "2026-01-05",
		}
	}

	It("accepts a submission without a receipt", func() {
		h := expense.NewHandler(svc, storage, upload)
		body, contentType := buildMultipart(fields(), nil, "")
		req := withPrincipal(httptest.NewRequest(http.MethodPost, "/expenses", body), employee)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		h.CreateExpense(rr, req)

		Expect(rr.Code).To(Equal(http.StatusCreated))
	})

	It("stores an attached receipt and forwards its URL", func() {
		h := expense.NewHandler(svc, storage, upload)
		body, contentType := buildMultipart(fields(), []byte("fake-image-bytes"), "image/png")
		req := withPrincipal(httptest.NewRequest(http.MethodPost, "/expenses", body), employee)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		h.CreateExpense(rr, req)

		Expect(rr.Code).To(Equal(http.StatusCreated))
	})

	It("rejects a receipt over the configured size cap", func() {
		h := expense.NewHandler(svc, storage, upload)
		oversized := bytes.Repeat([]byte("a"), 2048)
		body, contentType := buildMultipart(fields(), oversized, "image/png")
		req := withPrincipal(httptest.NewRequest(http.MethodPost, "/expenses", body), employee)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		h.CreateExpense(rr, req)

		Expect(rr.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects a receipt with a disallowed media type", func() {
		h := expense.NewHandler(svc, storage, upload)
		body, contentType := buildMultipart(fields(), []byte("not an image"), "text/plain")
		req := withPrincipal(httptest.NewRequest(http.MethodPost, "/expenses", body), employee)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		h.CreateExpense(rr, req)

		Expect(rr.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects an unparseable amount", func() {
		h := expense.NewHandler(svc, storage, upload)
		f := fields()
		f["amount"] = "not-a-number"
		body, contentType := buildMultipart(f, nil, "")
		req := withPrincipal(httptest.NewRequest(http.MethodPost, "/expenses", body), employee)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		h.CreateExpense(rr, req)

		Expect(rr.Code).To(Equal(http.StatusBadRequest))
	})
})
