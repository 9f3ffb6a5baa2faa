package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists idempotent DDL for every table the API touches.  Bed rows in
// rooms are provisioned by operators; the API only mutates rooms.username.
var schema = []struct {
	name string
	ddl  string
}{
	{"register", `CREATE TABLE IF NOT EXISTS register (
		id INT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		username VARCHAR(100) NULL,
		password VARCHAR(255) NULL,
		gender ENUM('Male','Female') NULL,
		contact VARCHAR(20) NULL,
		otp CHAR(6) NULL,
		otp_expires_at DATETIME NULL,
		registered_at TIMESTAMP NULL,
		UNIQUE KEY uq_register_email (email),
		UNIQUE KEY uq_register_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"rooms", `CREATE TABLE IF NOT EXISTS rooms (
		room_no VARCHAR(20) NOT NULL,
		bed_no INT NOT NULL,
		username VARCHAR(100) NULL,
		PRIMARY KEY (room_no, bed_no),
		INDEX idx_rooms_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"payment_status", `CREATE TABLE IF NOT EXISTS payment_status (
		username VARCHAR(100) PRIMARY KEY,
		status VARCHAR(20) DEFAULT 'Pending',
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"payment_requests", `CREATE TABLE IF NOT EXISTS payment_requests (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(100) NOT NULL,
		amount DECIMAL(10,2) NOT NULL,
		card_last4 VARCHAR(4),
		status VARCHAR(20) DEFAULT 'Pending',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_username (username),
		INDEX idx_status (status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"complaints", `CREATE TABLE IF NOT EXISTS complaints (
		id INT AUTO_INCREMENT PRIMARY KEY,
		subject VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		category VARCHAR(100) NULL,
		location VARCHAR(255) NULL,
		username VARCHAR(100) NULL,
		status VARCHAR(50) DEFAULT 'New',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_status (status),
		INDEX idx_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"notifications", `CREATE TABLE IF NOT EXISTS notifications (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(100),
		subject VARCHAR(255),
		message TEXT,
		desired_room VARCHAR(50),
		is_read TINYINT(1) DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"visitor_logs", `CREATE TABLE IF NOT EXISTS visitor_logs (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(100) NOT NULL,
		login_time DATETIME DEFAULT CURRENT_TIMESTAMP,
		ip_address VARCHAR(45),
		status VARCHAR(20) DEFAULT 'Success',
		INDEX idx_username_time (username, login_time)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"student_details", `CREATE TABLE IF NOT EXISTS student_details (
		username VARCHAR(100) PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		contact VARCHAR(20) NOT NULL,
		course VARCHAR(100),
		year VARCHAR(20),
		semester VARCHAR(20),
		prev_college VARCHAR(255),
		prev_result VARCHAR(50)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
}

// EnsureSchema creates any missing tables.  Existing tables are left as-is.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, t := range schema {
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("ensure table %s: %w", t.name, err)
		}
	}
	return nil
}
