package i18n

var messages = map[string]map[string]string{
	LocaleEnUS: {
		"error.bad_request":         "Invalid request",
		"error.unauthorized":        "Unauthorized",
		"error.not_found":           "Not found",
		"error.internal":            "Internal server error",
		"error.unavailable":         "Service is busy, please try again",
		"error.too_many_requests":   "Too many requests, please slow down",
		"error.invalid_input":       "Invalid input",
		"error.customer_id_invalid": "Invalid customer id",
		"error.branch_id_invalid":   "Invalid branch id",
		"error.template_id_invalid": "Invalid coupon template id",
		"error.amount_invalid":      "Invalid amount",
		"error.phone_invalid":       "Invalid phone number",
		"error.config_missing":      "Loyalty program is not configured for this branch",
		"error.config_invalid":      "Loyalty program configuration is invalid",
		"error.template_not_found":  "Reward not found",
		"error.template_inactive":   "Reward is not active",
		"error.template_expired":    "Reward has expired",
		"error.supply_exhausted":    "Reward is sold out",
		"error.insufficient_points": "Not enough points",
		"error.coupon_not_found":    "Coupon not found",
		"error.coupon_already_used": "Coupon has already been used",
		"error.coupon_expired":      "Coupon has expired",
		"error.customer_not_found":  "Customer not found",
		"error.customer_exists":     "Customer already registered",
		"error.branch_not_found":    "Branch not found",
		"error.branch_slug_exists":  "Branch slug already taken",
		"error.queue_unavailable":   "Async processing is unavailable",

		"error.rate_limited":           "Too many attempts, please retry in %d seconds",
		"error.rate_limit_unavailable": "Rate limiter is unavailable",
	},
	LocaleThTH: {
		"error.bad_request":         "คำขอไม่ถูกต้อง",
		"error.unauthorized":        "ไม่ได้รับอนุญาต",
		"error.not_found":           "ไม่พบข้อมูล",
		"error.internal":            "เกิดข้อผิดพลาดภายในระบบ",
		"error.unavailable":         "ระบบไม่ว่าง กรุณาลองใหม่อีกครั้ง",
		"error.too_many_requests":   "ทำรายการถี่เกินไป กรุณารอสักครู่",
		"error.invalid_input":       "ข้อมูลไม่ถูกต้อง",
		"error.customer_id_invalid": "รหัสสมาชิกไม่ถูกต้อง",
		"error.branch_id_invalid":   "รหัสสาขาไม่ถูกต้อง",
		"error.template_id_invalid": "รหัสของรางวัลไม่ถูกต้อง",
		"error.amount_invalid":      "จำนวนเงินไม่ถูกต้อง",
		"error.phone_invalid":       "เบอร์โทรศัพท์ไม่ถูกต้อง",
		"error.config_missing":      "สาขานี้ยังไม่ได้ตั้งค่าโปรแกรมสะสมแต้ม",
		"error.config_invalid":      "การตั้งค่าโปรแกรมสะสมแต้มไม่ถูกต้อง",
		"error.template_not_found":  "ไม่พบของรางวัล",
		"error.template_inactive":   "ของรางวัลนี้ปิดใช้งานอยู่",
		"error.template_expired":    "ของรางวัลนี้หมดอายุแล้ว",
		"error.supply_exhausted":    "ของรางวัลนี้ถูกแลกหมดแล้ว",
		"error.insufficient_points": "แต้มไม่เพียงพอ",
		"error.coupon_not_found":    "ไม่พบคูปอง",
		"error.coupon_already_used": "คูปองนี้ถูกใช้ไปแล้ว",
		"error.coupon_expired":      "คูปองหมดอายุแล้ว",
		"error.customer_not_found":  "ไม่พบสมาชิก",
		"error.customer_exists":     "สมาชิกนี้ลงทะเบียนแล้ว",
		"error.branch_not_found":    "ไม่พบสาขา",
		"error.branch_slug_exists":  "ชื่อย่อสาขานี้ถูกใช้แล้ว",
		"error.queue_unavailable":   "ระบบประมวลผลเบื้องหลังไม่พร้อมใช้งาน",

		"error.rate_limited":           "ทำรายการถี่เกินไป กรุณาลองใหม่ใน %d วินาที",
		"error.rate_limit_unavailable": "ระบบจำกัดความถี่ไม่พร้อมใช้งาน",
	},
}
