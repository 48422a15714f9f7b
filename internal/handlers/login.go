package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>เข้าสู่ระบบ</title>
	<script src="https://telegram.org/js/telegram-web-app.js"></script>
	<style>
		body { font-family: -apple-system, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; }
		.error { color: #ef4444; }
	</style>
</head>
<body>
	<p id="status">กำลังยืนยันตัวตน...</p>
	<script>
		const tg = window.Telegram.WebApp;
		tg.ready();
		if (tg.initData) {
			document.cookie = "tg_init_data=" + encodeURIComponent(tg.initData) + "; path=/; SameSite=Lax; max-age=86400";
			window.location.href = {{.Next}};
		} else {
			const el = document.getElementById("status");
			el.className = "error";
			el.innerText = "กรุณาเปิดจาก Telegram Mini App";
		}
	</script>
</body>
</html>`))

// Login is opened inside the Telegram Mini App. It stores the WebApp
// initData in the tg_init_data cookie read by the auth middleware and then
// redirects to ?next (a local path).
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/periods/current"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := loginPage.Execute(w, struct{ Next string }{next}); err != nil {
		h.log.Error("render login page", zap.Error(err))
	}
}
